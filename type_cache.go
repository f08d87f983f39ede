package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	lazyRefType = reflect.TypeOf((*LazyRef)(nil))
)

// ctorInfo caches the reflection work for a constructor or factory function:
// its parameter types and the position of its result and error values.
type ctorInfo struct {
	fnType      reflect.Type
	in          []reflect.Type
	result      reflect.Type
	resultIndex int
	errIndex    int // -1 when the function has no error result
}

// Global signature cache to avoid repeated reflection operations.
var globalCtorCache sync.Map // map[reflect.Type]*ctorInfo

// ctorInfoFor returns cached signature information for a constructor,
// computing it if necessary. It panics if the function is not a valid
// constructor: exactly one non-error result, at most one error result.
func ctorInfoFor(fn any) *ctorInfo {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		panic("constructor must be a function")
	}

	if cached, ok := globalCtorCache.Load(fnType); ok {
		return cached.(*ctorInfo)
	}

	info := &ctorInfo{
		fnType:      fnType,
		resultIndex: -1,
		errIndex:    -1,
	}

	info.in = make([]reflect.Type, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		info.in[i] = fnType.In(i)
	}

	for i := 0; i < fnType.NumOut(); i++ {
		outType := fnType.Out(i)
		if outType.AssignableTo(errorType) {
			if info.errIndex >= 0 {
				panic("multiple error results on a constructor function not permitted")
			}
			info.errIndex = i
		} else {
			if info.resultIndex >= 0 {
				panic(fmt.Sprintf("constructor must have exactly one non-error result, got %v", fnType))
			}
			info.resultIndex = i
			info.result = outType
		}
	}

	if info.resultIndex < 0 {
		panic("constructor must have at least one non-error result")
	}

	actual, _ := globalCtorCache.LoadOrStore(fnType, info)
	return actual.(*ctorInfo)
}

// usableDeclaredType reports whether a parameter type can serve as a type
// token on its own. Basic kinds like string and int carry no identity, so a
// parameter of such a type requires an explicit descriptor.
func usableDeclaredType(t reflect.Type) bool {
	if t == contextType || t == lazyRefType {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Struct,
		reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

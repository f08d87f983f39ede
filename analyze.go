package di

import (
	"reflect"
	"sync"
)

// classParams holds dependency descriptors registered out-of-band, keyed by
// the constructor's function type. This is the declaration side of the
// metadata the container queries for every class: callers that cannot (or
// prefer not to) attach Params to a provider can declare them once, any time
// after the constructor is defined.
var classParams sync.Map // map[reflect.Type][]Dep

// RegisterParams registers dependency descriptors for a constructor function.
// Descriptors align with the constructor's non-context parameters in order;
// missing trailing entries default to resolve-by-declared-type.
//
// Descriptors attached directly to a ClassProvider take precedence over ones
// registered here.
func RegisterParams(ctor any, params ...Dep) {
	t := reflect.TypeOf(ctor)
	if t == nil || t.Kind() != reflect.Func {
		panic("RegisterParams requires a constructor function")
	}
	classParams.Store(t, append([]Dep(nil), params...))
}

// paramsForClass returns the registered descriptors for a constructor, or nil
// when every parameter resolves by declared type.
func paramsForClass(ctor any) []Dep {
	if v, ok := classParams.Load(reflect.TypeOf(ctor)); ok {
		return v.([]Dep)
	}
	return nil
}

// paramsFor resolves the effective descriptor list for a class provider.
func paramsFor(p *ClassProvider) []Dep {
	if len(p.Params) > 0 {
		return p.Params
	}
	return paramsForClass(p.Class)
}

// classDependencies returns the dependency tokens of a constructor, one per
// non-context parameter in parameter order: the explicit token when a
// descriptor overrides the position, otherwise the declared parameter type.
// Lazy-marked parameters are excluded entirely, as are parameters whose
// declared type cannot serve as a token (those fail at instantiation time,
// not here).
func classDependencies(ctor any, params []Dep) []Token {
	info := ctorInfoFor(ctor)
	var deps []Token

	depIdx := 0
	for _, paramType := range info.in {
		if paramType == contextType {
			continue
		}
		var d Dep
		if depIdx < len(params) {
			d = params[depIdx]
		}
		depIdx++

		switch d.Kind {
		case DepLazy:
			// Lazy parameters carry no structural weight.
		case DepToken:
			deps = append(deps, normalizeToken(d.Token))
		default:
			if usableDeclaredType(paramType) {
				deps = append(deps, paramType)
			}
		}
	}
	return deps
}

// lazyTargets returns the set of tokens that some descriptor points at
// lazily. Bulk resolution defers these to a second pass so the eager side of
// each broken cycle exists before anything dereferences a lazy handle.
func lazyTargets(providers map[Token]any) map[Token]bool {
	targets := map[Token]bool{}
	for _, provider := range providers {
		cp, ok := provider.(*ClassProvider)
		if !ok {
			continue
		}
		for _, d := range paramsFor(cp) {
			if d.Kind == DepLazy {
				targets[normalizeToken(d.Token)] = true
			}
		}
	}
	return targets
}

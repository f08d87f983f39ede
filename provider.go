package di

import (
	"context"
	"fmt"
	"reflect"
)

// DepKind discriminates how a single constructor parameter is resolved.
type DepKind int

const (
	// DepDeclaredType resolves the parameter by its declared Go type. This
	// is the zero value, so a sparse descriptor list defaults every
	// unmentioned parameter to it.
	DepDeclaredType DepKind = iota

	// DepToken resolves the parameter by an explicit token instead of the
	// declared type.
	DepToken

	// DepLazy substitutes a *LazyRef bound to the target token without
	// resolving it. Lazy parameters are excluded from weight computation and
	// are the mechanism for breaking dependency cycles.
	DepLazy
)

// Dep is a per-parameter dependency descriptor. The zero value means
// resolve-by-declared-type.
type Dep struct {
	Kind  DepKind
	Token Token
}

// ByToken returns a descriptor that resolves a constructor parameter by an
// explicit token rather than the parameter's declared type.
func ByToken(token Token) Dep {
	return Dep{Kind: DepToken, Token: token}
}

// LazyTo returns a descriptor that injects an unresolved *LazyRef bound to
// the target token. The corresponding constructor parameter must have type
// *LazyRef.
func LazyTo(token Token) Dep {
	return Dep{Kind: DepLazy, Token: token}
}

// Hook is a provider-level lifecycle callback, invoked with the constructed
// instance after construction (OnInit) or before teardown (OnDestroy).
type Hook func(ctx context.Context, instance any) error

// Initializer is the capability interface for instances that want a
// post-construction hook. It runs after the provider-level OnInit hook.
type Initializer interface {
	Init(ctx context.Context) error
}

// Destroyer is the capability interface for instances that want a
// pre-destruction hook. It runs after the provider-level OnDestroy hook
// during Destroy. Instances implementing io.Closer but not Destroyer have
// Close called instead.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// ClassProvider registers a constructor function under a token. The
// constructor's parameters are resolved automatically, guided by the sparse
// Params descriptors; Deps are pure ordering hints and are never injected.
type ClassProvider struct {
	// Provide is the token to register under. If nil, the constructor's
	// result type is used.
	Provide Token

	// Class is the constructor: func(deps...) T or func(deps...) (T, error).
	// A context.Context parameter anywhere in the signature is supplied by
	// the container and is not a dependency.
	Class any

	// Params holds per-parameter descriptors, aligned with the constructor's
	// non-context parameters. Missing entries default to
	// resolve-by-declared-type. If empty, descriptors registered via
	// RegisterParams for this constructor apply.
	Params []Dep

	// Deps are extra tokens that must be constructed first during bulk
	// resolution. They contribute to weight only.
	Deps []Token

	OnInit    Hook
	OnDestroy Hook
}

// ValueProvider registers a precomputed value. The value is placed into the
// instance cache at registration time; there is no later resolution step.
type ValueProvider struct {
	Provide Token
	Value   any
}

// FactoryProvider registers a factory function. Each token in Deps is
// resolved sequentially and the resolved values are passed to the factory
// positionally. Deps double as ordering input for bulk resolution.
type FactoryProvider struct {
	Provide Token

	// Factory is func(deps...) T or func(deps...) (T, error). A
	// context.Context parameter anywhere in the signature is supplied by the
	// container; the remaining parameters receive the resolved Deps in
	// order.
	Factory any

	Deps []Token

	OnInit    Hook
	OnDestroy Hook
}

// Group is a named bundle of providers, possibly nested, that flattens into
// its constituents at registration time. A Group appearing in a Deps list
// expands to the group's own Deps plus the keys of its flattened member
// providers, contributing to ordering weight without being injected.
type Group struct {
	Name      string
	Providers []any
	Deps      []Token
}

// providerKey returns the registry key a provider registers under. It panics
// on malformed providers since those are programmer errors.
func providerKey(provider any) Token {
	switch p := provider.(type) {
	case *ClassProvider:
		if p.Class == nil || reflect.TypeOf(p.Class).Kind() != reflect.Func {
			panic("class provider requires a constructor function")
		}
		if p.Provide != nil {
			return normalizeToken(p.Provide)
		}
		return ctorInfoFor(p.Class).result
	case *ValueProvider:
		if p.Provide == nil {
			panic("value provider requires a provide token")
		}
		return normalizeToken(p.Provide)
	case *FactoryProvider:
		if p.Provide == nil {
			panic("factory provider requires a provide token")
		}
		if p.Factory == nil || reflect.TypeOf(p.Factory).Kind() != reflect.Func {
			panic("factory provider requires a factory function")
		}
		return normalizeToken(p.Provide)
	default:
		panic(fmt.Sprintf("unsupported provider type: %T", provider))
	}
}

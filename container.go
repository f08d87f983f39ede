package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/gburgyan/go-timing"
	"github.com/rs/zerolog"
)

// Container is the dependency-injection container. It holds the provider
// registry, the instance cache, the active resolution stack, and the weight
// memo.
//
// Resolution is singleton by construction: the first Resolve of a token
// constructs and caches the instance, and every later Resolve returns the
// identical cached value. Dependencies of a single constructor or factory are
// resolved strictly sequentially, in declared parameter order; the resolution
// stack therefore always reflects a single linear call chain, which is what
// makes the circular-dependency check sound.
//
// Resolve is fail-fast: the first error anywhere in a dependency subtree
// aborts the call and nothing is cached for the failed token. ResolveAll and
// Destroy are best-effort: per-token failures are logged and the pass
// continues. Both behaviors are deliberate; a programmer building one object
// wants to know immediately, a bootstrapper wiring an application wants
// maximum partial progress.
//
// A Container is freely constructible; use one per test for isolation, or the
// package-level Default container for conventional application wiring. The
// container's state is guarded for map safety, but resolution is designed for
// one logical caller at a time: concurrent Resolve calls that share
// transitive dependencies can legitimately trip the circular-dependency
// check.
type Container struct {
	mu        sync.Mutex
	providers map[Token]any
	instances map[Token]any
	order     []Token
	stack     []Token
	inFlight  map[Token]bool
	weights   map[Token]int

	log       zerolog.Logger
	verbosity Verbosity
}

// New creates an empty container. Options configure logging; resolution
// semantics are not configurable.
func New(opts ...Option) *Container {
	c := &Container{
		providers: map[Token]any{},
		instances: map[Token]any{},
		inFlight:  map[Token]bool{},
		weights:   map[Token]int{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the instance for a token, constructing it and its
// dependencies first if needed. The returned instance is cached; subsequent
// calls return the identical value.
//
// Tokens may be strings, reflect.Type values (see TypeOf), or constructor
// functions. A constructor function token whose type has no registered
// provider is instantiated directly, so any constructible class with
// resolvable dependencies may be resolved without explicit registration.
//
// Errors are *DependencyError values matching ErrCircularDependency,
// ErrNoProvider, or ErrMissingDependencyToken via errors.Is; errors from
// user-supplied constructors, factories, and hooks propagate verbatim.
func (c *Container) Resolve(ctx context.Context, token Token) (any, error) {
	return c.resolveToken(ctx, normalizeToken(token), token)
}

func (c *Container) resolveToken(ctx context.Context, key Token, original Token) (any, error) {
	if EnableTiming >= TimingResolve {
		tCtx, complete := timing.Start(ctx, "resolve:"+tokenName(key))
		defer complete()
		ctx = tCtx
	}

	c.mu.Lock()
	if v, ok := c.instances[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	provider, registered := c.providers[key]
	c.mu.Unlock()

	unlock, err := c.enterResolution(key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if c.verbose() {
		c.log.Debug().Str("token", tokenName(key)).Msg("resolving")
	}

	var instance any
	if !registered {
		ctor := constructorFromToken(original)
		if ctor == nil {
			return nil, &DependencyError{
				Message: "no provider found for token",
				Token:   key,
				kind:    ErrNoProvider,
			}
		}
		// Implicit self-registration path: the token is itself a
		// constructor.
		instance, err = c.construct(ctx, ctor, paramsForClass(ctor))
		if err != nil {
			return nil, err
		}
		if err = runInstanceInit(ctx, instance); err != nil {
			return nil, err
		}
	} else {
		switch p := provider.(type) {
		case *ValueProvider:
			// Values are cached at registration, so the cache check above
			// normally short-circuits. Handled here for completeness of the
			// provider switch.
			instance = p.Value
		case *ClassProvider:
			instance, err = c.construct(ctx, p.Class, paramsFor(p))
			if err != nil {
				return nil, err
			}
			if p.OnInit != nil {
				if err = p.OnInit(ctx, instance); err != nil {
					return nil, err
				}
			}
			if err = runInstanceInit(ctx, instance); err != nil {
				return nil, err
			}
		case *FactoryProvider:
			instance, err = c.invokeFactory(ctx, p)
			if err != nil {
				return nil, err
			}
			if p.OnInit != nil {
				if err = p.OnInit(ctx, instance); err != nil {
					return nil, err
				}
			}
			if err = runInstanceInit(ctx, instance); err != nil {
				return nil, err
			}
		default:
			// Register validates provider shapes, so this is unreachable.
			return nil, fmt.Errorf("unsupported provider type: %T", provider)
		}
	}

	c.mu.Lock()
	c.setInstanceLocked(key, instance)
	c.mu.Unlock()

	if c.verbose() {
		c.log.Debug().Str("token", tokenName(key)).Msg("resolved")
	}
	return instance, nil
}

// construct instantiates a class: each constructor parameter is filled in
// declared order, either from the context, from a lazy handle, or by
// recursively resolving the parameter's token. Resolution is strictly
// sequential; resolving sibling parameters concurrently could push a shared
// transitive dependency onto the resolution stack twice and manufacture a
// false circular-dependency failure.
func (c *Container) construct(ctx context.Context, ctor any, params []Dep) (any, error) {
	info := ctorInfoFor(ctor)
	args := make([]reflect.Value, len(info.in))

	depIdx := 0
	for i, paramType := range info.in {
		if paramType == contextType {
			args[i] = reflect.ValueOf(ctx)
			continue
		}

		var d Dep
		if depIdx < len(params) {
			d = params[depIdx]
		}
		depIdx++

		switch d.Kind {
		case DepLazy:
			if paramType != lazyRefType {
				return nil, &DependencyError{
					Message: fmt.Sprintf("lazy dependency requires a *di.LazyRef parameter, constructor %v parameter %d is %v", info.fnType, i, paramType),
					Token:   normalizeToken(d.Token),
					kind:    ErrMissingDependencyToken,
				}
			}
			args[i] = reflect.ValueOf(newLazyRef(c, normalizeToken(d.Token)))
		case DepToken:
			v, err := c.Resolve(ctx, d.Token)
			if err != nil {
				return nil, err
			}
			arg, err := coerceArg(v, paramType)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		default:
			if !usableDeclaredType(paramType) {
				return nil, &DependencyError{
					Message: fmt.Sprintf("constructor %v parameter %d has no resolvable token; an explicit descriptor is required", info.fnType, i),
					Token:   paramType,
					kind:    ErrMissingDependencyToken,
				}
			}
			v, err := c.Resolve(ctx, paramType)
			if err != nil {
				return nil, err
			}
			arg, err := coerceArg(v, paramType)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
	}

	return callConstructor(ctx, info, reflect.ValueOf(ctor), args)
}

// invokeFactory resolves a factory provider's declared dependencies
// sequentially and calls the factory with the resolved values positionally.
func (c *Container) invokeFactory(ctx context.Context, p *FactoryProvider) (any, error) {
	info := ctorInfoFor(p.Factory)

	var resolved []any
	for _, dep := range p.Deps {
		if _, ok := dep.(*Group); ok {
			// Groups in a dep list contribute ordering weight only; they are
			// never injected.
			continue
		}
		v, err := c.Resolve(ctx, dep)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, v)
	}

	args := make([]reflect.Value, len(info.in))
	argIdx := 0
	for i, paramType := range info.in {
		if paramType == contextType {
			args[i] = reflect.ValueOf(ctx)
			continue
		}
		if argIdx >= len(resolved) {
			return nil, fmt.Errorf("factory for %s declares more parameters than dependency tokens", tokenName(p.Provide))
		}
		arg, err := coerceArg(resolved[argIdx], paramType)
		if err != nil {
			return nil, err
		}
		args[i] = arg
		argIdx++
	}
	if argIdx != len(resolved) {
		return nil, fmt.Errorf("factory for %s declares %d injectable parameters but %d dependency tokens", tokenName(p.Provide), argIdx, len(resolved))
	}

	return callConstructor(ctx, info, reflect.ValueOf(p.Factory), args)
}

// callConstructor invokes a constructor or factory function and splits its
// results into (instance, error).
func callConstructor(ctx context.Context, info *ctorInfo, fn reflect.Value, args []reflect.Value) (any, error) {
	var results []reflect.Value
	if EnableTiming >= TimingConstructors {
		_, complete := timing.Start(ctx, "construct:"+info.result.String())
		results = fn.Call(args)
		complete()
	} else {
		results = fn.Call(args)
	}

	if info.errIndex >= 0 {
		if errVal := results[info.errIndex]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}
	return results[info.resultIndex].Interface(), nil
}

// coerceArg prepares a resolved dependency value for a call argument slot.
func coerceArg(v any, paramType reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(paramType), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(paramType) {
		return reflect.Value{}, fmt.Errorf("resolved dependency of type %v is not assignable to parameter type %v", rv.Type(), paramType)
	}
	if rv.Type() != paramType {
		converted := reflect.New(paramType).Elem()
		converted.Set(rv)
		return converted, nil
	}
	return rv, nil
}

func runInstanceInit(ctx context.Context, instance any) error {
	if init, ok := instance.(Initializer); ok {
		return init.Init(ctx)
	}
	return nil
}

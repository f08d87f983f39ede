package di

import (
	"context"
	"fmt"
	"sync"
)

// TimingMode controls whether resolution work is recorded into go-timing
// contexts. This is a process-wide switch; it has no effect on resolution
// semantics.
type TimingMode int

const (
	// TimingDisable will disable timing for all containers.
	TimingDisable TimingMode = iota

	// TimingResolve will start a timing context for each token resolution.
	// Nested resolutions nest their timing contexts, so the exact dependency
	// chain is visible in the timing report.
	TimingResolve

	// TimingConstructors additionally times each constructor and factory
	// invocation, which is useful to see where the time of a bootstrap is
	// actually being spent.
	TimingConstructors
)

var EnableTiming = TimingDisable

var (
	defaultContainer     *Container
	defaultContainerOnce sync.Once
)

// Default returns the process-wide container used by the package-level
// helper functions. Applications that want isolation (tests especially)
// should construct their own containers with New instead.
func Default() *Container {
	defaultContainerOnce.Do(func() {
		defaultContainer = New()
	})
	return defaultContainer
}

// Register registers a provider with the default container.
func Register(provider any) {
	Default().Register(provider)
}

// Resolve resolves a token against the default container.
func Resolve(ctx context.Context, token Token) (any, error) {
	return Default().Resolve(ctx, token)
}

// ResolveAll resolves every provider registered with the default container.
func ResolveAll(ctx context.Context) map[Token]any {
	return Default().ResolveAll(ctx)
}

// Bootstrap registers the given providers with the default container and
// resolves everything.
func Bootstrap(ctx context.Context, providers ...any) *Container {
	return Default().Bootstrap(ctx, providers...)
}

// GetInstance returns the default container's cached instance for a token.
func GetInstance(token Token) (any, bool) {
	return Default().GetInstance(token)
}

// Clear wipes the default container's state.
func Clear() {
	Default().Clear()
}

// Destroy tears down the default container's instances and clears it.
func Destroy(ctx context.Context) {
	Default().Destroy(ctx)
}

// ResolveAs resolves a token against the given container and returns the
// instance as T. It fails if resolution fails or the instance is not a T.
func ResolveAs[T any](ctx context.Context, c *Container, token Token) (T, error) {
	var zero T
	v, err := c.Resolve(ctx, token)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resolved instance for %s has type %T, not %v", tokenName(token), v, TypeOf[T]())
	}
	return typed, nil
}

// Get returns the value of type T from the default container, resolving it
// if necessary. It panics on resolution failure; the typical behavior for a
// dependency that cannot be built is panicking on the caller's side anyway,
// so this presents a simplified interface for the common case.
func Get[T any](ctx context.Context) T {
	v, err := ResolveAs[T](ctx, Default(), TypeOf[T]())
	if err != nil {
		panic(err)
	}
	return v
}

// GetWithError behaves like Get but returns resolution errors instead of
// panicking.
func GetWithError[T any](ctx context.Context) (T, error) {
	return ResolveAs[T](ctx, Default(), TypeOf[T]())
}

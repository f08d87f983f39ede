package di

import (
	"fmt"
	"reflect"
)

// Register stores a provider under its resolved key. Accepted shapes:
// *ClassProvider, *ValueProvider, *FactoryProvider, *Group (flattened in
// place), or a bare constructor function (registered as an implicit class
// provider under its result type).
//
// Re-registering a token silently overwrites the previous provider. Value
// providers are placed into the instance cache immediately; no later
// resolution step re-triggers their construction. Malformed providers panic,
// as they are programmer errors.
func (c *Container) Register(provider any) {
	switch p := provider.(type) {
	case *Group:
		for _, member := range flattenProviders(p.Providers) {
			c.Register(member)
		}
		return
	case *ClassProvider, *ValueProvider, *FactoryProvider:
	default:
		if rt := reflect.TypeOf(provider); rt != nil && rt.Kind() == reflect.Func {
			c.Register(&ClassProvider{Class: provider})
			return
		}
		panic(fmt.Sprintf("unsupported provider type: %T", provider))
	}

	key := providerKey(provider)

	c.mu.Lock()
	c.providers[key] = provider
	// The dependency graph just changed; a stale memoized weight would
	// silently corrupt bulk-resolution order.
	c.weights = map[Token]int{}
	if vp, ok := provider.(*ValueProvider); ok {
		c.setInstanceLocked(key, vp.Value)
	}
	c.mu.Unlock()

	if c.events() {
		c.log.Info().
			Str("token", tokenName(key)).
			Str("kind", providerKindName(provider)).
			Msg("provider registered")
	}
}

// Clear removes all providers, cached instances, the resolution stack, and
// the weight memo in one step. No partial state survives.
func (c *Container) Clear() {
	c.mu.Lock()
	c.providers = map[Token]any{}
	c.instances = map[Token]any{}
	c.order = nil
	c.stack = nil
	c.inFlight = map[Token]bool{}
	c.weights = map[Token]int{}
	c.mu.Unlock()

	if c.events() {
		c.log.Info().Msg("container cleared")
	}
}

// GetInstance returns the cached instance for a token. The boolean reports
// presence, so falsy cached values (0, false, "") are distinguishable from
// absence. It never constructs anything.
func (c *Container) GetInstance(token Token) (any, bool) {
	key := normalizeToken(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.instances[key]
	return v, ok
}

// MustGetInstance returns the cached instance for a token, panicking with an
// ErrInstanceNotResolved error if the token has not been resolved yet.
func (c *Container) MustGetInstance(token Token) any {
	v, ok := c.GetInstance(token)
	if !ok {
		panic(newDependencyError(ErrInstanceNotResolved, "instance not resolved for token", normalizeToken(token)))
	}
	return v
}

// Providers returns a copy of the provider registry keyed by token.
func (c *Container) Providers() map[Token]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Token]any, len(c.providers))
	for k, v := range c.providers {
		out[k] = v
	}
	return out
}

// Instances returns a copy of the instance cache keyed by token.
func (c *Container) Instances() map[Token]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Token]any, len(c.instances))
	for k, v := range c.instances {
		out[k] = v
	}
	return out
}

// setInstanceLocked caches an instance and records its insertion position for
// reverse teardown. Caller holds c.mu.
func (c *Container) setInstanceLocked(key Token, instance any) {
	if _, exists := c.instances[key]; !exists {
		c.order = append(c.order, key)
	}
	c.instances[key] = instance
}

func providerKindName(provider any) string {
	switch provider.(type) {
	case *ClassProvider:
		return "class"
	case *ValueProvider:
		return "value"
	case *FactoryProvider:
		return "factory"
	default:
		return fmt.Sprintf("%T", provider)
	}
}

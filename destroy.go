package di

import (
	"context"
	"io"
)

// Destroy tears down every cached instance in reverse creation order: the
// provider-level OnDestroy hook first, then the instance's own Destroy
// method if it implements Destroyer, falling back to Close for io.Closer
// instances. Each hook is independently guarded so one instance's failure
// never prevents the teardown of the rest. Afterwards the entire container
// state is cleared.
func (c *Container) Destroy(ctx context.Context) {
	c.mu.Lock()
	order := make([]Token, len(c.order))
	copy(order, c.order)
	instances := make(map[Token]any, len(c.instances))
	for k, v := range c.instances {
		instances[k] = v
	}
	providers := make(map[Token]any, len(c.providers))
	for k, v := range c.providers {
		providers[k] = v
	}
	c.mu.Unlock()

	if c.events() {
		c.log.Info().Int("instances", len(order)).Msg("destroying container")
	}

	for i := len(order) - 1; i >= 0; i-- {
		token := order[i]
		instance := instances[token]

		if hook := destroyHook(providers[token]); hook != nil {
			c.runTeardown(ctx, token, "provider destroy hook", func() error {
				return hook(ctx, instance)
			})
		}

		switch inst := instance.(type) {
		case Destroyer:
			c.runTeardown(ctx, token, "instance destroy", func() error {
				return inst.Destroy(ctx)
			})
		case io.Closer:
			c.runTeardown(ctx, token, "instance close", func() error {
				return inst.Close()
			})
		}
	}

	c.Clear()
}

func destroyHook(provider any) Hook {
	switch p := provider.(type) {
	case *ClassProvider:
		return p.OnDestroy
	case *FactoryProvider:
		return p.OnDestroy
	default:
		return nil
	}
}

// runTeardown isolates a single teardown callback: errors and panics are
// logged and swallowed so the remaining instances still get torn down.
func (c *Container) runTeardown(ctx context.Context, token Token, step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil && c.events() {
			c.log.Error().
				Str("token", tokenName(token)).
				Str("step", step).
				Interface("panic", r).
				Msg("panic during teardown, continuing")
		}
	}()
	if err := fn(); err != nil && c.events() {
		c.log.Warn().
			Str("token", tokenName(token)).
			Str("step", step).
			Err(err).
			Msg("teardown failed, continuing")
	}
}

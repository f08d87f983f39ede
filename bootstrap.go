package di

import (
	"context"
	"sort"
)

// ResolveAll resolves every registered provider, in ascending weight order so
// no provider is resolved before its non-lazy structural dependencies.
// Tokens that some other provider points at lazily are deferred to a second
// pass; by the time their lazy handles are dereferenced, both sides of each
// broken cycle exist.
//
// Bulk resolution is best-effort: a per-token failure is logged and the pass
// continues. Callers needing fail-fast behavior should Resolve tokens
// individually. The returned map is a snapshot of the instance cache.
func (c *Container) ResolveAll(ctx context.Context) map[Token]any {
	c.mu.Lock()
	deferred := lazyTargets(c.providers)
	weighted := make([]TokenWeight, 0, len(c.providers))
	for token := range c.providers {
		weighted = append(weighted, TokenWeight{
			Token:  token,
			Weight: c.weightLocked(token, map[Token]bool{token: true}),
		})
	}
	c.mu.Unlock()

	sort.Slice(weighted, func(i, j int) bool {
		if weighted[i].Weight != weighted[j].Weight {
			return weighted[i].Weight < weighted[j].Weight
		}
		return tokenName(weighted[i].Token) < tokenName(weighted[j].Token)
	})

	if c.events() {
		c.log.Info().Int("providers", len(weighted)).Msg("bulk resolution starting")
	}

	for _, tw := range weighted {
		if deferred[tw.Token] {
			continue
		}
		c.resolveAllToken(ctx, tw.Token)
	}
	for _, tw := range weighted {
		if !deferred[tw.Token] {
			continue
		}
		c.resolveAllToken(ctx, tw.Token)
	}

	return c.Instances()
}

func (c *Container) resolveAllToken(ctx context.Context, token Token) {
	if _, err := c.Resolve(ctx, token); err != nil {
		if c.events() {
			c.log.Warn().
				Str("token", tokenName(token)).
				Err(err).
				Msg("bulk resolution failed for provider, continuing")
		}
	}
}

// Bootstrap flattens any groups in the provider list, registers every
// resulting provider, and resolves everything via ResolveAll. It returns the
// container for chaining.
func (c *Container) Bootstrap(ctx context.Context, providers ...any) *Container {
	for _, provider := range flattenProviders(providers) {
		c.Register(provider)
	}
	c.ResolveAll(ctx)
	return c
}

package di

import "sort"

// CalculateWeight returns the maximum dependency-chain depth for a token: 0
// for value providers, unregistered tokens, and tokens with no non-lazy
// dependencies, otherwise 1 plus the maximum weight of its dependencies.
// Cycles contribute 0 to the maximum instead of failing; the runtime
// circular-dependency error belongs to Resolve, not here.
//
// Results are memoized per token. The memo is invalidated by Register and
// Clear, so weights always reflect the current provider set.
func (c *Container) CalculateWeight(token Token) int {
	key := normalizeToken(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weightLocked(key, map[Token]bool{key: true})
}

// weightLocked performs the depth-first walk. The visited set covers the
// current path only and is copied per branch so sibling subtrees cannot
// suppress each other. Caller holds c.mu.
func (c *Container) weightLocked(token Token, visited map[Token]bool) int {
	if w, ok := c.weights[token]; ok {
		return w
	}

	provider, registered := c.providers[token]
	if !registered {
		c.weights[token] = 0
		return 0
	}
	if _, ok := provider.(*ValueProvider); ok {
		c.weights[token] = 0
		return 0
	}

	deps := dependencyTokens(provider)
	if len(deps) == 0 {
		c.weights[token] = 0
		return 0
	}

	maxChild := 0
	for _, dep := range deps {
		if visited[dep] {
			// Cycle on the current path; contributes 0.
			continue
		}
		branch := make(map[Token]bool, len(visited)+1)
		for k := range visited {
			branch[k] = true
		}
		branch[dep] = true
		if w := c.weightLocked(dep, branch); w > maxChild {
			maxChild = w
		}
	}

	weight := maxChild + 1
	c.weights[token] = weight
	return weight
}

// dependencyTokens gathers a provider's structural dependencies: explicit
// deps flattened through groups for factories, the union of flattened
// explicit deps and constructor-derived dependencies for classes. Duplicates
// are removed; order is not significant beyond the max-depth walk.
func dependencyTokens(provider any) []Token {
	switch p := provider.(type) {
	case *FactoryProvider:
		return dedupeTokens(flattenDeps(p.Deps))
	case *ClassProvider:
		deps := flattenDeps(p.Deps)
		deps = append(deps, classDependencies(p.Class, paramsFor(p))...)
		return dedupeTokens(deps)
	default:
		return nil
	}
}

func dedupeTokens(deps []Token) []Token {
	if len(deps) < 2 {
		return deps
	}
	seen := make(map[Token]bool, len(deps))
	out := deps[:0]
	for _, dep := range deps {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}

// TokenWeight pairs a registered token with its computed weight.
type TokenWeight struct {
	Token  Token
	Weight int
}

// ProvidersByWeight returns every registered token with its weight, ordered
// by ascending weight. Ties order by token name for determinism.
func (c *Container) ProvidersByWeight() []TokenWeight {
	c.mu.Lock()
	out := make([]TokenWeight, 0, len(c.providers))
	for token := range c.providers {
		out = append(out, TokenWeight{
			Token:  token,
			Weight: c.weightLocked(token, map[Token]bool{token: true}),
		})
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return tokenName(out[i].Token) < tokenName(out[j].Token)
	})
	return out
}

package di

// flattenProviders expands every Group in the list into its member providers,
// recursively. A group already expanded during this call is not expanded
// again, so groups that reach themselves transitively terminate; the visited
// state is local to a single call.
func flattenProviders(providers []any) []any {
	return flattenProvidersVisited(providers, map[*Group]bool{})
}

func flattenProvidersVisited(providers []any, visited map[*Group]bool) []any {
	var flat []any
	for _, entry := range providers {
		if g, ok := entry.(*Group); ok {
			if visited[g] {
				continue
			}
			visited[g] = true
			flat = append(flat, flattenProvidersVisited(g.Providers, visited)...)
			continue
		}
		flat = append(flat, entry)
	}
	return flat
}

// flattenDeps expands a dependency-token list for ordering purposes. A Group
// appearing in the list expands to the group's own declared deps, expanded
// recursively, followed by the provider keys of its flattened members. All
// other entries normalize to registry keys. Cycle safety mirrors
// flattenProviders: per-call visited state.
func flattenDeps(deps []Token) []Token {
	return flattenDepsVisited(deps, map[*Group]bool{})
}

func flattenDepsVisited(deps []Token, visited map[*Group]bool) []Token {
	var flat []Token
	for _, entry := range deps {
		g, ok := entry.(*Group)
		if !ok {
			flat = append(flat, normalizeToken(entry))
			continue
		}
		if visited[g] {
			continue
		}
		visited[g] = true
		flat = append(flat, flattenDepsVisited(g.Deps, visited)...)
		for _, member := range flattenProvidersVisited(g.Providers, map[*Group]bool{}) {
			flat = append(flat, memberKey(member))
		}
	}
	return flat
}

// memberKey returns the registry key for a flattened group member, accepting
// the same shapes Register does.
func memberKey(member any) Token {
	switch member.(type) {
	case *ClassProvider, *ValueProvider, *FactoryProvider:
		return providerKey(member)
	default:
		return normalizeToken(member)
	}
}

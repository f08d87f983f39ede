package di

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Status is a diagnostic tool that returns a string describing the state of
// the container: each registered token, its provider kind, and whether an
// instance has been cached for it. Cached instances without a provider
// (implicitly constructed classes) are listed too.
func (c *Container) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Container) statusLocked() string {
	lines := map[string]string{}
	var keys []string

	for token, provider := range c.providers {
		name := tokenName(token)
		_, resolved := c.instances[token]
		var line string
		switch p := provider.(type) {
		case *ValueProvider:
			line = fmt.Sprintf("%s - value provider - direct value set", name)
		case *ClassProvider:
			if resolved {
				line = fmt.Sprintf("%s - created from constructor: %s", name, formatConstructorDebug(p.Class))
			} else {
				line = fmt.Sprintf("%s - uninitialized - constructor: %s", name, formatConstructorDebug(p.Class))
			}
		case *FactoryProvider:
			if resolved {
				line = fmt.Sprintf("%s - created from factory: %s", name, formatConstructorDebug(p.Factory))
			} else {
				line = fmt.Sprintf("%s - uninitialized - factory: %s", name, formatConstructorDebug(p.Factory))
			}
		}
		lines[name] = line
		keys = append(keys, name)
	}

	for token := range c.instances {
		name := tokenName(token)
		if _, known := lines[name]; known {
			continue
		}
		lines[name] = fmt.Sprintf("%s - instance without provider", name)
		keys = append(keys, name)
	}

	sort.Strings(keys)

	result := strings.Builder{}
	for _, key := range keys {
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(lines[key])
	}
	return result.String()
}

// formatConstructorDebug returns a string representation of a constructor or
// factory function's signature. This is used instead of the native `%#v`
// formatter to not return the raw address of the function as that's not
// important for this and simplifies testing.
func formatConstructorDebug(fn any) string {
	if fn == nil {
		return "-"
	}
	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		// We should never get here
		return "non-function!"
	}
	builder := strings.Builder{}
	builder.WriteString("(")
	for i := 0; i < fnType.NumIn(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(fnType.In(i).String())
	}
	builder.WriteString(") ")
	for i := 0; i < fnType.NumOut(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(fnType.Out(i).String())
	}
	return builder.String()
}

// GraphNode describes one token in the dependency graph.
type GraphNode struct {
	Weight       int
	Dependencies []string
}

// DependencyGraph returns the registered dependency graph keyed by token
// name, for diagnostics and visualization: each node carries its weight and
// the names of its structural (non-lazy) dependencies.
func (c *Container) DependencyGraph() map[string]GraphNode {
	c.mu.Lock()
	defer c.mu.Unlock()

	graph := make(map[string]GraphNode, len(c.providers))
	for token, provider := range c.providers {
		deps := dependencyTokens(provider)
		names := make([]string, 0, len(deps))
		for _, dep := range deps {
			names = append(names, tokenName(dep))
		}
		sort.Strings(names)
		graph[tokenName(token)] = GraphNode{
			Weight:       c.weightLocked(token, map[Token]bool{token: true}),
			Dependencies: names,
		}
	}
	return graph
}

package di

import (
	"fmt"
	"reflect"
)

// Token is an opaque identifier naming a dependency. A token may be a string,
// a reflect.Type, a constructor function, or any other comparable value.
// Tokens are compared by identity, never by structural content.
//
// A constructor function used as a token stands for the type it constructs:
// it is normalized to the reflect.Type of its first non-error result, so the
// function value itself never needs to be comparable.
type Token = any

// TypeOf returns the type token for T. This is the usual way to ask the
// container for something by its Go type:
//
//	svc, err := c.Resolve(ctx, di.TypeOf[*UserService]())
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// normalizeToken maps a token to its canonical registry key. Constructor
// functions collapse to the type they construct; everything else is used
// as-is.
func normalizeToken(token Token) Token {
	if token == nil {
		return nil
	}
	if t, ok := token.(reflect.Type); ok {
		return t
	}
	if rt := reflect.TypeOf(token); rt.Kind() == reflect.Func {
		return ctorInfoFor(token).result
	}
	return token
}

// constructorFromToken returns the token itself if it is a constructor
// function, or nil if the token cannot be instantiated directly.
func constructorFromToken(token Token) any {
	if token == nil {
		return nil
	}
	if _, ok := token.(reflect.Type); ok {
		return nil
	}
	if rt := reflect.TypeOf(token); rt.Kind() == reflect.Func {
		return token
	}
	return nil
}

// tokenName returns a human-readable name for a token. This is the form used
// in error chains, logs, and the dependency graph.
func tokenName(token Token) string {
	switch t := token.(type) {
	case nil:
		return "<nil>"
	case reflect.Type:
		return t.String()
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		if rt := reflect.TypeOf(token); rt.Kind() == reflect.Func {
			return ctorInfoFor(token).result.String()
		}
		return fmt.Sprintf("%v", token)
	}
}

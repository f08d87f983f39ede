// Package di provides a dependency-injection container: a registry that maps
// tokens to instance-construction strategies, resolves constructor
// dependencies automatically, detects circular dependencies, orders bulk
// initialization by dependency depth, and manages instance lifecycle hooks.
//
// The Container object has comprehensive documentation about how it works.
//
// There are also helper global functions that make using this more concise.
package di

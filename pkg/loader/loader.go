// Package loader defines the module-resolution seam of spec §6.3. The
// module loader's filesystem (or network, or database) I/O is explicitly
// an external collaborator (spec.md §1): this package names only the
// interface a host implements and a "module" command (itself out of
// scope) would consume, the same way pkg/command names the Command ABI
// without shipping any concrete built-in commands.
package loader

import "github.com/mekotech/loom/internal/ast"

// Origin identifies where a module import is being resolved from, so a
// Resolver can implement relative-path lookups.
type Origin struct {
	// Path is the importing module's own path, empty for the top-level
	// script.
	Path string
}

// Module is a resolved, parsed unit of source a "module"/"import"-style
// command would splice into a script or run as a nested Process.
type Module struct {
	Path string
	Tree *ast.Script
}

// Resolver resolves an import path to a Module. Implementations decide
// what a path means: a filesystem path, an import from an in-memory map
// for tests, a network fetch, or anything else a host wants to plug in.
type Resolver interface {
	Resolve(path string, origin Origin) (Module, error)
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(path string, origin Origin) (Module, error)

func (f ResolverFunc) Resolve(path string, origin Origin) (Module, error) {
	return f(path, origin)
}

package evaluator

import (
	"sort"

	"github.com/thomasrohde/stellar/pkg/ast"
)

// Env is one lexical frame of variable bindings.
// It supports parent-chained lookup for lexical scoping. A binding holding a
// nil Literal is declared but uninitialized, which is distinct from Null.
type Env struct {
	bindings map[string]ast.Literal
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]ast.Literal),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Define binds name in this frame, replacing any existing binding here.
// A nil val declares the name without initializing it.
func (e *Env) Define(name string, val ast.Literal) {
	e.bindings[name] = val
}

// Get looks up a variable by name, traversing parent scopes. The value is nil
// when the nearest binding is uninitialized.
func (e *Env) Get(name string) (ast.Literal, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Assign overwrites the nearest existing binding of name. It reports false,
// and changes nothing, when no frame binds name.
func (e *Env) Assign(name string, val ast.Literal) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return true
		}
	}
	return false
}

// Contains checks whether a variable is defined in this scope or any parent.
func (e *Env) Contains(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Names returns the names bound directly in this frame, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

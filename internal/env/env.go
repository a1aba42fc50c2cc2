// Package env holds the two process-wide (really: per-compilation-unit)
// tables the rest of the engine mutates: the type-constructor registry and
// the term-name registry, plus the variable allocator that keeps their
// identities distinct from any other Environment's.
//
// The source this engine was distilled from kept these as package-level
// globals. Threading an explicit Environment value through parsing,
// inference, and elaboration instead means two compilation units can run
// side by side without clobbering each other's type variables.
package env

import (
	"strconv"

	"github.com/mlcore/hindley/internal/ast"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
)

// TermInfo is everything known about one top-level name: its declared type
// (from a "declare" form, if any), its derived type (from inference, once
// defined), the source form it came from, the parsed AST, and the opaque
// name the code generator should emit.
type TermInfo struct {
	Name     string
	Declared types.Type
	Derived  types.Type
	Source   *sexp.Form
	AST      ast.Node
	CodeName string
}

// Scheme returns the type this name should be instantiated from when it is
// referenced: the declared type if present, else the derived type, else nil.
func (t *TermInfo) Scheme() types.Type {
	if t.Declared != nil {
		return t.Declared
	}
	return t.Derived
}

// Environment is the mutable registry threaded through a single compilation
// unit: type constructors, term bindings, and the variable allocator that
// guarantees every Var minted through it has a unique id.
type Environment struct {
	vars   types.VarFactory
	tycons map[string]*types.TyCon
	terms  map[string]*TermInfo

	nextCodeName int
}

// New returns an empty Environment seeded with the built-in Int, Bool and
// Unit type constructors, which every program needs and no surface form ever
// defines.
func New() *Environment {
	e := &Environment{
		tycons: make(map[string]*types.TyCon),
		terms:  make(map[string]*TermInfo),
	}
	e.tycons["Int"] = &types.TyCon{Name: "Int", Arity: 0}
	e.tycons["Bool"] = &types.TyCon{Name: "Bool", Arity: 0}
	e.tycons["Unit"] = &types.TyCon{Name: "Unit", Arity: 0}
	return e
}

// IntType, BoolType and UnitType return fresh Apps of the preregistered
// builtin constructors. IntType is the type of integer literals, BoolType is
// what "if" conditions and data-constructor predicates unify against, and
// UnitType is the result of an empty Sequence.
func (e *Environment) IntType() types.Type  { return &types.App{Con: e.tycons["Int"]} }
func (e *Environment) BoolType() types.Type { return &types.App{Con: e.tycons["Bool"]} }
func (e *Environment) UnitType() types.Type { return &types.App{Con: e.tycons["Unit"]} }

// NewVar mints a fresh type variable unique to this Environment.
func (e *Environment) NewVar() *types.Var { return e.vars.Fresh() }

// Vars exposes the Environment's variable allocator to package unify's
// Fresh, which needs to mint several related variables in one call.
func (e *Environment) Vars() *types.VarFactory { return &e.vars }

// LookupTyCon returns the named type constructor, or nil if unknown.
func (e *Environment) LookupTyCon(name string) *types.TyCon {
	return e.tycons[name]
}

// DeclareTyCon registers a new type constructor with the given arity. If
// name is already registered, the prior TyCon is replaced and a Redefined
// warning describing the clobber is returned alongside the new one; callers
// decide whether that is fatal.
func (e *Environment) DeclareTyCon(name string, arity int) (*types.TyCon, *herr.Redefined) {
	tc := &types.TyCon{Name: name, Arity: arity}
	prior, clobbered := e.tycons[name]
	e.tycons[name] = tc
	if clobbered {
		return tc, &herr.Redefined{Name: name, Prior: prior, New: tc}
	}
	return tc, nil
}

// LookupTerm returns the TermInfo for name, or nil if it has never been
// declared or defined.
func (e *Environment) LookupTerm(name string) *TermInfo {
	return e.terms[name]
}

// ForwardDeclare ensures a TermInfo record exists for name, creating one
// with a freshly-minted internal code name if it does not, and returns it.
func (e *Environment) ForwardDeclare(name string) *TermInfo {
	if t, ok := e.terms[name]; ok {
		return t
	}
	t := &TermInfo{Name: name, CodeName: e.freshCodeName(name)}
	e.terms[name] = t
	return t
}

// Define installs info under name, returning a Redefined warning if a
// TermInfo already existed (the caller decides whether to proceed).
func (e *Environment) Define(name string, info *TermInfo) *herr.Redefined {
	prior, clobbered := e.terms[name]
	e.terms[name] = info
	if clobbered {
		return &herr.Redefined{Name: name, Prior: prior, New: info}
	}
	return nil
}

// TermNames returns every currently-bound term name, in no particular
// order; callers that want a stable order (e.g. to print an environment
// dump) should sort the result themselves.
func (e *Environment) TermNames() []string {
	names := make([]string, 0, len(e.terms))
	for n := range e.terms {
		names = append(names, n)
	}
	return names
}

// TyConNames returns every currently-registered type constructor name.
func (e *Environment) TyConNames() []string {
	names := make([]string, 0, len(e.tycons))
	for n := range e.tycons {
		names = append(names, n)
	}
	return names
}

func (e *Environment) freshCodeName(surface string) string {
	e.nextCodeName++
	return "$" + surface + "_" + strconv.Itoa(e.nextCodeName)
}

// Package types defines the internal representation of types used by the
// unifier and inference engine: type variables, type-constructor
// applications, and function types.
package types

import (
	"fmt"
	"strings"
)

// Type is the tagged sum of every type node. Implementations live in this
// package only; callers type-switch on the concrete pointer type rather than
// calling interface methods, mirroring how the unifier and inferencer
// dispatch on AST node kinds.
type Type interface {
	isType()
}

// Var is a type variable. Once Instance is set it is never reset to a
// different non-nil value, though Prune may rewrite it to a shorter
// equivalent chain (path compression). ID is immutable and unique within the
// Environment that minted it.
type Var struct {
	id       int
	Instance Type

	// name is the human-readable label assigned the first time this
	// variable is unparsed. Once set it never changes, so repeated
	// printing of the same variable is stable.
	name string
}

func (*Var) isType() {}

// ID returns the variable's unique, immutable identifier.
func (v *Var) ID() int { return v.id }

// TyCon is a named, fixed-arity type constructor together with the data
// constructors that build values of it. Ctors starts empty and is populated
// once a define-type form has parsed its alternatives; that mutation is the
// only state a TyCon carries after construction.
type TyCon struct {
	Name  string
	Arity int
	Ctors []DataCtor
}

// DataCtor names one alternative of a TyCon and the membership predicate
// generated alongside it (e.g. constructor "Just" predicate "Just-P").
type DataCtor struct {
	Name          string
	PredicateName string
}

// App applies a TyCon to a list of type arguments. len(Args) must equal
// Con.Arity.
type App struct {
	Con  *TyCon
	Args []Type
}

func (*App) isType() {}

// Fun is a function type. From may be empty (a nullary function); To is the
// single result type.
type Fun struct {
	From []Type
	To   Type
}

func (*Fun) isType() {}

// VarFactory mints fresh, distinct type variables. It is deliberately a
// small value rather than a package-level counter so that an Environment can
// own one and isolate variable identities between compilation units.
type VarFactory struct {
	next int
}

// Fresh allocates and returns a new type variable with a globally-unique
// (within this factory) id and no instance.
func (f *VarFactory) Fresh() *Var {
	v := &Var{id: f.next}
	f.next++
	return v
}

// Unparser renders types back into surface syntax, synthesizing and caching
// display names for anonymous variables as it goes. Construct a fresh
// Unparser per top-level call site when you want independent letter
// sequences (e.g. one per printed declaration); reuse one when multiple
// types must share a naming scheme.
type Unparser struct {
	nextLetter int
}

// String renders t as surface syntax: "() -> T" for a nullary function,
// "A -> T" for unary, "(A,B,...) -> T" for multi-argument, and bare
// identifiers/applications otherwise. It follows Var.Instance chains without
// mutating them (use unify.Prune beforehand to compress long chains).
func (u *Unparser) String(t Type) string {
	switch tt := t.(type) {
	case *Var:
		if tt.Instance != nil {
			return u.String(tt.Instance)
		}
		if tt.name == "" {
			tt.name = u.freshName()
		}
		return tt.name
	case *App:
		if len(tt.Args) == 0 {
			return tt.Con.Name
		}
		parts := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			parts[i] = u.String(a)
		}
		return fmt.Sprintf("(%s %s)", tt.Con.Name, strings.Join(parts, " "))
	case *Fun:
		to := u.String(tt.To)
		switch len(tt.From) {
		case 0:
			return fmt.Sprintf("() -> %s", to)
		case 1:
			return fmt.Sprintf("%s -> %s", u.String(tt.From[0]), to)
		default:
			parts := make([]string, len(tt.From))
			for i, f := range tt.From {
				parts[i] = u.String(f)
			}
			return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ","), to)
		}
	default:
		return fmt.Sprintf("<unknown type %T>", t)
	}
}

// freshName produces the next name in the sequence a, b, c, ..., z, a1, b1, ...
func (u *Unparser) freshName() string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	round := u.nextLetter / len(letters)
	letter := letters[u.nextLetter%len(letters)]
	u.nextLetter++
	if round == 0 {
		return string(letter)
	}
	return fmt.Sprintf("%c%d", letter, round)
}

// String renders t using a throwaway Unparser; callers that print several
// related types and want consistent variable names across them should share
// one Unparser instead.
func String(t Type) string {
	u := &Unparser{}
	return u.String(t)
}

// Package unify implements Prune, the occurs check, first-order
// unification, and fresh instantiation of polymorphic types over the
// mutable-instance-pointer type representation in package types.
//
// Unlike the substitution-map style of unification (compute a Substitution,
// apply it everywhere), this package follows the classic algorithm W
// approach: Unify mutates Var.Instance fields in place and returns only an
// error. There is no separate Apply step; Prune reads the mutated variables
// back out.
package unify

import (
	"fmt"

	"github.com/mlcore/hindley/internal/types"
)

// Kind classifies a unification failure so callers can distinguish the
// taxonomy called for by the surrounding driver without string matching.
type Kind int

const (
	// KindTypeMismatch covers incompatible structure or constructor names.
	KindTypeMismatch Kind = iota
	// KindArityMismatch is unification of two function types with
	// differing argument counts.
	KindArityMismatch
	// KindInfiniteType is an occurs-check failure.
	KindInfiniteType
)

// Error is returned by Unify and Fresh's callers on failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func mismatch(format string, args ...any) error {
	return &Error{Kind: KindTypeMismatch, Msg: fmt.Sprintf(format, args...)}
}

func arityMismatch(format string, args ...any) error {
	return &Error{Kind: KindArityMismatch, Msg: fmt.Sprintf(format, args...)}
}

func infiniteType(format string, args ...any) error {
	return &Error{Kind: KindInfiniteType, Msg: fmt.Sprintf(format, args...)}
}

// Prune follows a Var's Instance chain to its representative type,
// path-compressing as it goes so repeated calls are cheap. Non-Var types,
// and Vars with no Instance, are returned unchanged.
func Prune(t types.Type) types.Type {
	v, ok := t.(*types.Var)
	if !ok || v.Instance == nil {
		return t
	}
	resolved := Prune(v.Instance)
	v.Instance = resolved
	return resolved
}

// occursIn reports whether v occurs anywhere inside t, after pruning. Var
// identity is compared by pointer, per HM semantics (not structurally).
func occursIn(v *types.Var, t types.Type) bool {
	switch tt := Prune(t).(type) {
	case *types.Var:
		return tt == v
	case *types.App:
		for _, a := range tt.Args {
			if occursIn(v, a) {
				return true
			}
		}
		return false
	case *types.Fun:
		for _, a := range tt.From {
			if occursIn(v, a) {
				return true
			}
		}
		return occursIn(v, tt.To)
	default:
		return false
	}
}

// Unify attempts to make a and b equal by mutating the Instance field of
// whichever type variables are needed. It returns an error describing the
// first incompatibility found; on error some variables may already have been
// bound irreversibly (the spec does not require rollback).
func Unify(a, b types.Type) error {
	a, b = Prune(a), Prune(b)

	if av, ok := a.(*types.Var); ok {
		if bv, ok := b.(*types.Var); ok && av == bv {
			return nil
		}
		if occursIn(av, b) {
			return infiniteType("infinite type: %s occurs in %s", types.String(av), types.String(b))
		}
		av.Instance = b
		return nil
	}

	if _, ok := b.(*types.Var); ok {
		// Swap so the Var-handling branch above does the work uniformly.
		return Unify(b, a)
	}

	switch at := a.(type) {
	case *types.Fun:
		bt, ok := b.(*types.Fun)
		if !ok {
			return mismatch("type mismatch: cannot unify %s with %s", types.String(a), types.String(b))
		}
		if len(at.From) != len(bt.From) {
			return arityMismatch("arity mismatch: %d arguments vs %d", len(at.From), len(bt.From))
		}
		for i := range at.From {
			if err := Unify(at.From[i], bt.From[i]); err != nil {
				return err
			}
		}
		return Unify(at.To, bt.To)

	case *types.App:
		bt, ok := b.(*types.App)
		if !ok {
			return mismatch("type mismatch: cannot unify %s with %s", types.String(a), types.String(b))
		}
		if at.Con.Name != bt.Con.Name {
			return mismatch("type mismatch: cannot unify %s with %s", types.String(a), types.String(b))
		}
		if len(at.Args) != len(bt.Args) {
			return mismatch("type constructor %s applied to %d args vs %d", at.Con.Name, len(at.Args), len(bt.Args))
		}
		for i := range at.Args {
			if err := Unify(at.Args[i], bt.Args[i]); err != nil {
				return err
			}
		}
		return nil

	default:
		return mismatch("type mismatch: cannot unify %s with %s", types.String(a), types.String(b))
	}
}

// Fresh returns a copy of t in which every generic type variable - one that
// does not occur (after pruning) in any type of nonGeneric - has been
// replaced by a newly allocated variable from factory. Multiple occurrences
// of the same source variable map to the same fresh variable within one
// call; the memo recording that mapping is returned alongside the copy so
// callers can inspect or extend the substitution.
func Fresh(factory *types.VarFactory, t types.Type, nonGeneric []types.Type) (types.Type, map[*types.Var]*types.Var) {
	memo := make(map[*types.Var]*types.Var)
	return freshRec(factory, t, nonGeneric, memo), memo
}

func freshRec(factory *types.VarFactory, t types.Type, nonGeneric []types.Type, memo map[*types.Var]*types.Var) types.Type {
	switch tt := Prune(t).(type) {
	case *types.Var:
		if isGeneric(tt, nonGeneric) {
			if fv, ok := memo[tt]; ok {
				return fv
			}
			fv := factory.Fresh()
			memo[tt] = fv
			return fv
		}
		return tt
	case *types.App:
		args := make([]types.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = freshRec(factory, a, nonGeneric, memo)
		}
		return &types.App{Con: tt.Con, Args: args}
	case *types.Fun:
		from := make([]types.Type, len(tt.From))
		for i, a := range tt.From {
			from[i] = freshRec(factory, a, nonGeneric, memo)
		}
		return &types.Fun{From: from, To: freshRec(factory, tt.To, nonGeneric, memo)}
	default:
		return t
	}
}

// isGeneric reports whether v is free in scheme, i.e. does not occur in any
// of the non-generic (lambda-captured) types in scope.
func isGeneric(v *types.Var, nonGeneric []types.Type) bool {
	for _, ng := range nonGeneric {
		if occursIn(v, ng) {
			return false
		}
	}
	return true
}

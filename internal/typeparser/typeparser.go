// Package typeparser turns a surface type expression - a symbol, a type
// constructor application, or a "(-> A B)" function-type form - into the
// internal types.Type representation.
package typeparser

import (
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
)

// Context supplies type constructors that are in scope in addition to
// whatever is already registered in the Environment, so a caller can parse
// a recursive type definition before registering its name. The elaborator's
// define-type does not use it: it registers the TyCon first and passes a nil
// Context.
type Context map[string]int // constructor name -> arity

// VarScope maps surface type-variable names to the internal Var each one
// resolves to. Passing the same VarScope into multiple Parse calls makes the
// same surface variable ('a, say) resolve to the same internal Var across
// all of them - exactly what define-type needs so that every data
// constructor shares the type's parameters.
type VarScope map[string]*types.Var

// NewVarScope returns an empty scope.
func NewVarScope() VarScope { return make(VarScope) }

// Parse resolves form into a Type. Unknown constructor names fail with
// herr.UnknownTyCon; arity mismatches fail with herr.TyConArity; malformed
// shapes fail with herr.ParseError. Free variables are recorded into scope
// as they're discovered (memoised by name within and across calls sharing
// scope).
func Parse(e *env.Environment, ctx Context, scope VarScope, form *sexp.Form) (types.Type, error) {
	switch form.Kind {
	case sexp.KindSymbol:
		return parseSymbol(e, ctx, scope, form)
	case sexp.KindList:
		return parseList(e, ctx, scope, form)
	default:
		return nil, herr.New(herr.ParseError, form.Pos, "expected a type, found %s", form.String())
	}
}

func parseSymbol(e *env.Environment, ctx Context, scope VarScope, form *sexp.Form) (types.Type, error) {
	name := form.Symbol
	if arity, ok := ctx[name]; ok {
		return applyTyCon(e, ctx, scope, name, arity, form, nil)
	}
	if tc := e.LookupTyCon(name); tc != nil {
		return applyTyCon(e, ctx, scope, name, tc.Arity, form, nil)
	}
	// Unknown symbol: treat as a type variable, memoised by name.
	if v, ok := scope[name]; ok {
		return v, nil
	}
	v := e.NewVar()
	scope[name] = v
	return v, nil
}

func parseList(e *env.Environment, ctx Context, scope VarScope, form *sexp.Form) (types.Type, error) {
	if len(form.List) == 0 {
		return nil, herr.New(herr.ParseError, form.Pos, "empty type expression")
	}
	head := form.List[0]
	if head.Kind == sexp.KindSymbol && head.Symbol == "->" {
		return parseFunType(e, ctx, scope, form)
	}
	if head.Kind != sexp.KindSymbol {
		return nil, herr.New(herr.ParseError, head.Pos, "expected a type constructor name, found %s", head.String())
	}

	name := head.Symbol
	argForms := form.List[1:]
	if arity, ok := ctx[name]; ok {
		return applyTyCon(e, ctx, scope, name, arity, form, argForms)
	}
	tc := e.LookupTyCon(name)
	if tc == nil {
		return nil, herr.New(herr.UnknownTyCon, head.Pos, "unknown type constructor %q", name)
	}
	return applyTyCon(e, ctx, scope, name, tc.Arity, form, argForms)
}

// applyTyCon builds App{Con, args} for a constructor referenced either
// bare (argForms == nil, meaning "no argument forms were written") or
// applied to argForms, checking arity either way.
func applyTyCon(e *env.Environment, ctx Context, scope VarScope, name string, arity int, form *sexp.Form, argForms []*sexp.Form) (types.Type, error) {
	if len(argForms) != arity {
		return nil, herr.New(herr.TyConArity, form.Pos, "type constructor %q expects %d argument(s), got %d", name, arity, len(argForms))
	}
	tc := e.LookupTyCon(name)
	if tc == nil {
		// Constructor is in ctx but not registered yet; synthesize a
		// placeholder descriptor so App has something to point at. The
		// placeholder is not added to the Environment.
		tc = &types.TyCon{Name: name, Arity: arity}
	}
	args := make([]types.Type, len(argForms))
	for i, af := range argForms {
		t, err := Parse(e, ctx, scope, af)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return &types.App{Con: tc, Args: args}, nil
}

func parseFunType(e *env.Environment, ctx Context, scope VarScope, form *sexp.Form) (types.Type, error) {
	if len(form.List) != 3 {
		return nil, herr.New(herr.ParseError, form.Pos, "(-> A B) expects exactly 2 operands, got %d", len(form.List)-1)
	}
	argForm, retForm := form.List[1], form.List[2]

	var argForms []*sexp.Form
	if argForm.Kind == sexp.KindList {
		argForms = argForm.List
	} else {
		argForms = []*sexp.Form{argForm}
	}

	from := make([]types.Type, len(argForms))
	for i, af := range argForms {
		t, err := Parse(e, ctx, scope, af)
		if err != nil {
			return nil, err
		}
		from[i] = t
	}
	to, err := Parse(e, ctx, scope, retForm)
	if err != nil {
		return nil, err
	}
	return &types.Fun{From: from, To: to}, nil
}

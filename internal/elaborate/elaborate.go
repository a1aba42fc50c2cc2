// Package elaborate dispatches top-level forms - declare, define-type,
// define, and a flattening top-level grouping form - against an
// Environment, producing the opaque descriptors a downstream code generator
// would consume.
package elaborate

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mlcore/hindley/internal/ast"
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/infer"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/typeparser"
	"github.com/mlcore/hindley/internal/types"
	"github.com/mlcore/hindley/internal/valueparser"
)

// Host supplies the macro-expansion boundary the value parser needs; it is
// re-exported so callers of this package do not also need to import
// valueparser just to build one.
type Host = valueparser.Host

// DescriptorKind tags which fields of a Descriptor are meaningful.
type DescriptorKind int

const (
	// DescribeDefine is a brand-new top-level value binding.
	DescribeDefine DescriptorKind = iota
	// DescribeAssign is a re-definition of an existing value binding.
	DescribeAssign
	// DescribeDataType is a define-type's constructors and predicates.
	DescribeDataType
)

// CtorDescriptor names one data constructor generated by a define-type,
// together with the membership predicate generated alongside it.
type CtorDescriptor struct {
	Name          string
	Type          types.Type
	PredicateName string
	PredicateType types.Type
}

// Descriptor is what a code generator needs to emit one top-level form's
// artifact. declare forms produce no Descriptor at all (nil, nil, nil).
type Descriptor struct {
	Kind DescriptorKind

	// Populated for DescribeDefine / DescribeAssign.
	Name     string
	CodeName string
	Expr     ast.Node
	Type     types.Type

	// Populated for DescribeDataType.
	TyCon *types.TyCon
	Ctors []CtorDescriptor
}

// Elaborate dispatches a single top-level form. The returned *herr.Redefined
// is non-nil only when a define-type clobbers a previously-registered type
// constructor of the same name; it does not block elaboration, but callers
// may choose to treat it as fatal.
func Elaborate(e *env.Environment, host Host, form *sexp.Form) (*Descriptor, *herr.Redefined, error) {
	if form == nil || form.Kind != sexp.KindList || len(form.List) == 0 {
		return nil, nil, herr.New(herr.ParseError, formPos(form), "top-level form must be a non-empty list")
	}
	head := form.List[0]
	if head.Kind != sexp.KindSymbol {
		return nil, nil, herr.New(herr.ParseError, head.Pos, "top-level form head must be a symbol")
	}

	switch head.Symbol {
	case "declare":
		return elaborateDeclare(e, form)
	case "define-type":
		return elaborateDefineType(e, form)
	case "define":
		return elaborateDefine(e, host, form)
	case "begin":
		return nil, nil, herr.New(herr.ParseError, form.Pos, "begin groups must go through ElaborateAll, not Elaborate")
	default:
		return nil, nil, herr.New(herr.ParseError, head.Pos, "unrecognised top-level form %q", head.Symbol)
	}
}

// ElaborateAll flattens any nested "begin" groups in forms into a single
// sequence and elaborates each one in order, stopping at the first error.
func ElaborateAll(e *env.Environment, host Host, forms []*sexp.Form) ([]*Descriptor, []*herr.Redefined, error) {
	flat, err := flatten(forms)
	if err != nil {
		return nil, nil, err
	}
	var descriptors []*Descriptor
	var warnings []*herr.Redefined
	for _, f := range flat {
		d, w, err := Elaborate(e, host, f)
		if err != nil {
			return descriptors, warnings, err
		}
		if w != nil {
			warnings = append(warnings, w)
		}
		if d != nil {
			descriptors = append(descriptors, d)
		}
	}
	return descriptors, warnings, nil
}

func flatten(forms []*sexp.Form) ([]*sexp.Form, error) {
	var out []*sexp.Form
	for _, f := range forms {
		if isBegin(f) {
			inner, err := flatten(f.List[1:])
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func isBegin(f *sexp.Form) bool {
	return f != nil && f.Kind == sexp.KindList && len(f.List) > 0 &&
		f.List[0].Kind == sexp.KindSymbol && f.List[0].Symbol == "begin"
}

func elaborateDeclare(e *env.Environment, form *sexp.Form) (*Descriptor, *herr.Redefined, error) {
	if len(form.List) != 3 {
		return nil, nil, herr.New(herr.ParseError, form.Pos, "(declare name type) expects 2 operands, got %d", len(form.List)-1)
	}
	nameForm, typeForm := form.List[1], form.List[2]
	if nameForm.Kind != sexp.KindSymbol {
		return nil, nil, herr.New(herr.ParseError, nameForm.Pos, "declare name must be a symbol")
	}
	t, err := typeparser.Parse(e, nil, typeparser.NewVarScope(), typeForm)
	if err != nil {
		return nil, nil, err
	}
	info := e.ForwardDeclare(nameForm.Symbol)
	info.Declared = t
	return nil, nil, nil
}

func elaborateDefineType(e *env.Environment, form *sexp.Form) (*Descriptor, *herr.Redefined, error) {
	if len(form.List) < 2 {
		return nil, nil, herr.New(herr.ParseError, form.Pos, "define-type requires a (C v1...vn) header")
	}
	header := form.List[1]
	if header.Kind != sexp.KindList || len(header.List) == 0 {
		return nil, nil, herr.New(herr.ParseError, header.Pos, "define-type header must be (C v1...vn)")
	}
	nameForm := header.List[0]
	if nameForm.Kind != sexp.KindSymbol {
		return nil, nil, herr.New(herr.ParseError, nameForm.Pos, "type constructor name must be a symbol")
	}
	name := nameForm.Symbol
	paramForms := header.List[1:]
	params := make([]string, len(paramForms))
	for i, p := range paramForms {
		if p.Kind != sexp.KindSymbol {
			return nil, nil, herr.New(herr.ParseError, p.Pos, "type parameter must be a symbol")
		}
		params[i] = p.Symbol
	}

	// Register the constructor before parsing its data constructors, so a
	// recursive reference to C inside one of them resolves through the
	// ordinary Environment lookup rather than needing a separate in-scope
	// context.
	tc, warn := e.DeclareTyCon(name, len(params))

	scope := typeparser.NewVarScope()
	paramVars := make([]types.Type, len(params))
	for i, p := range params {
		v := e.NewVar()
		scope[p] = v
		paramVars[i] = v
	}
	selfType := &types.App{Con: tc, Args: paramVars}

	ctorForms := form.List[2:]
	ctors := make([]CtorDescriptor, 0, len(ctorForms))
	for _, cf := range ctorForms {
		cd, err := parseCtor(e, scope, selfType, cf)
		if err != nil {
			return nil, nil, err
		}
		ctors = append(ctors, cd)
	}

	dataCtors := make([]types.DataCtor, len(ctors))
	for i, cd := range ctors {
		dataCtors[i] = types.DataCtor{Name: cd.Name, PredicateName: cd.PredicateName}
	}
	tc.Ctors = dataCtors

	for _, cd := range ctors {
		e.Define(cd.Name, &env.TermInfo{Name: cd.Name, Declared: cd.Type})
		e.Define(cd.PredicateName, &env.TermInfo{Name: cd.PredicateName, Declared: cd.PredicateType})
	}

	return &Descriptor{Kind: DescribeDataType, TyCon: tc, Ctors: ctors}, warn, nil
}

// parseCtor parses one data-constructor alternative: a bare symbol (a
// nullary constructor) or a (K a1...ak) list (a k-ary constructor), sharing
// scope so its type parameters resolve to the same Vars as selfType's.
func parseCtor(e *env.Environment, scope typeparser.VarScope, selfType *types.App, form *sexp.Form) (CtorDescriptor, error) {
	predType := &types.Fun{From: []types.Type{selfType}, To: e.BoolType()}

	switch form.Kind {
	case sexp.KindSymbol:
		name := form.Symbol
		return CtorDescriptor{
			Name:          name,
			Type:          selfType,
			PredicateName: predicateName(name),
			PredicateType: predType,
		}, nil

	case sexp.KindList:
		if len(form.List) == 0 {
			return CtorDescriptor{}, herr.New(herr.ParseError, form.Pos, "empty data constructor")
		}
		nameForm := form.List[0]
		if nameForm.Kind != sexp.KindSymbol {
			return CtorDescriptor{}, herr.New(herr.ParseError, nameForm.Pos, "data constructor name must be a symbol")
		}
		argForms := form.List[1:]
		args := make([]types.Type, len(argForms))
		for i, af := range argForms {
			t, err := typeparser.Parse(e, nil, scope, af)
			if err != nil {
				return CtorDescriptor{}, err
			}
			args[i] = t
		}
		return CtorDescriptor{
			Name:          nameForm.Symbol,
			Type:          &types.Fun{From: args, To: selfType},
			PredicateName: predicateName(nameForm.Symbol),
			PredicateType: predType,
		}, nil

	default:
		return CtorDescriptor{}, herr.New(herr.ParseError, form.Pos, "data constructor must be a symbol or list")
	}
}

// predicateName follows the "-P" convention the surface language's scenario
// library uses (e.g. "Just" gets the predicate "Just-P").
func predicateName(ctor string) string { return ctor + "-P" }

func elaborateDefine(e *env.Environment, host Host, form *sexp.Form) (*Descriptor, *herr.Redefined, error) {
	if len(form.List) != 3 {
		return nil, nil, herr.New(herr.ParseError, form.Pos, "define expects 2 operands, got %d", len(form.List)-1)
	}
	target, bodyForm := form.List[1], form.List[2]

	name, valueForm, err := desugarDefineTarget(target, bodyForm)
	if err != nil {
		return nil, nil, err
	}

	node, err := valueparser.Parse(e, host, valueForm)
	if err != nil {
		return nil, nil, err
	}
	t, err := infer.Infer(e, node)
	if err != nil {
		return nil, nil, err
	}

	existing := e.LookupTerm(name)
	wasDefined := existing != nil && existing.Derived != nil

	info := &env.TermInfo{
		Name:    name,
		Derived: t,
		Source:  form,
		AST:     node,
	}
	if existing != nil {
		info.Declared = existing.Declared
		info.CodeName = existing.CodeName
	} else {
		info.CodeName = e.ForwardDeclare(name).CodeName
	}
	// A define replacing a forward-declare, or re-defining an existing
	// value, is expected usage, not the define-type "clobber" case; the
	// Redefined warning from Define is intentionally discarded here.
	e.Define(name, info)

	kind := DescribeDefine
	if wasDefined {
		kind = DescribeAssign
	}
	return &Descriptor{
		Kind:     kind,
		Name:     name,
		CodeName: info.CodeName,
		Expr:     node,
		Type:     infer.DeriveType(node),
	}, nil, nil
}

// desugarDefineTarget implements "define (f a*) e" as sugar for
// "define f (letrec ((f (fn (a*) e))) f)", so both forms share one
// elaboration path.
func desugarDefineTarget(target, bodyForm *sexp.Form) (string, *sexp.Form, error) {
	switch target.Kind {
	case sexp.KindSymbol:
		return target.Symbol, bodyForm, nil
	case sexp.KindList:
		if len(target.List) == 0 || target.List[0].Kind != sexp.KindSymbol {
			return "", nil, herr.New(herr.ParseError, target.Pos, "define function header must be (name params...)")
		}
		name := target.List[0].Symbol
		params := sexp.List(target.List[1:]...)
		fnForm := sexp.List(sexp.Sym("fn"), params, bodyForm)
		binding := sexp.List(sexp.List(sexp.Sym(name), fnForm))
		letrecForm := sexp.List(sexp.Sym("letrec"), binding, sexp.Sym(name))
		return name, letrecForm, nil
	default:
		return "", nil, herr.New(herr.ParseError, target.Pos, "define target must be a symbol or (name params...)")
	}
}

func formPos(f *sexp.Form) lexer.Position {
	if f == nil {
		return lexer.Position{}
	}
	return f.Pos
}

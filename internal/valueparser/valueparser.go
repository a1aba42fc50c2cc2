// Package valueparser recursively descends over surface value forms,
// producing the typed AST that package infer walks. It is the one place the
// engine calls out to the host: an unrecognised list head that the host has
// registered as a macro gets expanded via a callback and re-parsed, which is
// how surface syntax the host wants to support (but this engine does not
// know about) gets lowered to forms this engine does know.
package valueparser

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mlcore/hindley/internal/ast"
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/typeparser"
)

// Host is the boundary into the surrounding system: the set of names the
// host treats as macros, and the pure, deterministic expansion function for
// them. A trivial Host (NoMacros) is provided for unit tests and for
// embeddings that have no macro layer at all.
type Host interface {
	IsMacro(name string) bool
	Expand(form *sexp.Form) (*sexp.Form, error)
}

// NoMacros is a Host with no registered macros; Expand is never called.
type NoMacros struct{}

func (NoMacros) IsMacro(string) bool                     { return false }
func (NoMacros) Expand(f *sexp.Form) (*sexp.Form, error) { return f, nil }

var reservedHeads = map[string]bool{
	"fn": true, "let": true, "letrec": true, "if": true,
	"lisp": true, "progn": true,
}

// Parse converts one surface form into an AST node.
func Parse(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	if form == nil {
		return nil, herr.New(herr.ParseError, lexer.Position{}, "null form")
	}

	switch form.Kind {
	case sexp.KindInt:
		return ast.NewLiteral(form, form.Int), nil

	case sexp.KindSymbol:
		if form.Symbol == "" {
			return nil, herr.New(herr.ParseError, form.Pos, "empty symbol")
		}
		return ast.NewVariable(form, form.Symbol), nil

	case sexp.KindList:
		return parseList(e, host, form)

	default:
		return nil, herr.New(herr.ParseError, form.Pos, "unrecognised atom kind")
	}
}

func parseList(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	if len(form.List) == 0 {
		return nil, herr.New(herr.ParseError, form.Pos, "empty application")
	}

	head := form.List[0]
	if head.Kind == sexp.KindSymbol {
		switch head.Symbol {
		case "fn":
			return parseAbstraction(e, host, form)
		case "let":
			return parseLet(e, host, form, false)
		case "letrec":
			return parseLet(e, host, form, true)
		case "if":
			return parseIf(e, host, form)
		case "lisp":
			return parseHostEscape(e, form)
		case "progn":
			return parseSequence(e, host, form)
		}
		if !reservedHeads[head.Symbol] && host.IsMacro(head.Symbol) {
			expanded, err := host.Expand(form)
			if err != nil {
				return nil, herr.New(herr.ParseError, form.Pos, "macro %q expansion failed: %v", head.Symbol, err)
			}
			return Parse(e, host, expanded)
		}
	}
	return parseApplication(e, host, form)
}

func parseAbstraction(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	if len(form.List) != 3 {
		return nil, herr.New(herr.ParseError, form.Pos, "(fn (params) body) expects 2 operands, got %d", len(form.List)-1)
	}
	paramsForm, bodyForm := form.List[1], form.List[2]
	if paramsForm.Kind != sexp.KindList {
		return nil, herr.New(herr.ParseError, paramsForm.Pos, "fn parameter list must be a list")
	}
	params := make([]string, len(paramsForm.List))
	for i, p := range paramsForm.List {
		if p.Kind != sexp.KindSymbol {
			return nil, herr.New(herr.ParseError, p.Pos, "fn parameter must be a symbol, got %s", p.String())
		}
		params[i] = p.Symbol
	}
	body, err := Parse(e, host, bodyForm)
	if err != nil {
		return nil, err
	}
	return ast.NewAbstraction(form, params, body), nil
}

func parseLet(e *env.Environment, host Host, form *sexp.Form, recursive bool) (ast.Node, error) {
	name := "let"
	if recursive {
		name = "letrec"
	}
	if len(form.List) != 3 {
		return nil, herr.New(herr.ParseError, form.Pos, "(%s ((v e)*) body) expects 2 operands, got %d", name, len(form.List)-1)
	}
	bindingsForm, bodyForm := form.List[1], form.List[2]
	if bindingsForm.Kind != sexp.KindList {
		return nil, herr.New(herr.ParseError, bindingsForm.Pos, "%s bindings must be a list", name)
	}

	bindings := make([]ast.Binding, len(bindingsForm.List))
	for i, bf := range bindingsForm.List {
		if bf.Kind != sexp.KindList || len(bf.List) != 2 {
			return nil, herr.New(herr.ParseError, bf.Pos, "%s binding must be (name expr)", name)
		}
		nameForm, exprForm := bf.List[0], bf.List[1]
		if nameForm.Kind != sexp.KindSymbol {
			return nil, herr.New(herr.ParseError, nameForm.Pos, "%s binding name must be a symbol", name)
		}
		value, err := Parse(e, host, exprForm)
		if err != nil {
			return nil, err
		}
		bindings[i] = ast.Binding{Name: nameForm.Symbol, Body: value}
	}

	body, err := Parse(e, host, bodyForm)
	if err != nil {
		return nil, err
	}
	if recursive {
		return ast.NewLetrec(form, bindings, body), nil
	}
	return ast.NewLet(form, bindings, body), nil
}

func parseIf(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	if len(form.List) != 4 {
		return nil, herr.New(herr.ParseError, form.Pos, "(if t a b) expects 3 operands, got %d", len(form.List)-1)
	}
	cond, err := Parse(e, host, form.List[1])
	if err != nil {
		return nil, err
	}
	then, err := Parse(e, host, form.List[2])
	if err != nil {
		return nil, err
	}
	els, err := Parse(e, host, form.List[3])
	if err != nil {
		return nil, err
	}
	return ast.NewIf(form, cond, then, els), nil
}

func parseSequence(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	items := make([]ast.Node, len(form.List)-1)
	for i, f := range form.List[1:] {
		n, err := Parse(e, host, f)
		if err != nil {
			return nil, err
		}
		items[i] = n
	}
	return ast.NewSequence(form, items), nil
}

func parseHostEscape(e *env.Environment, form *sexp.Form) (ast.Node, error) {
	if len(form.List) != 3 {
		return nil, herr.New(herr.ParseError, form.Pos, "(lisp <type> <raw>) expects 2 operands, got %d", len(form.List)-1)
	}
	t, err := typeparser.Parse(e, nil, typeparser.NewVarScope(), form.List[1])
	if err != nil {
		return nil, err
	}
	return ast.NewHostEscape(form, t, form.List[2]), nil
}

func parseApplication(e *env.Environment, host Host, form *sexp.Form) (ast.Node, error) {
	rator, err := Parse(e, host, form.List[0])
	if err != nil {
		return nil, err
	}
	rands := make([]ast.Node, len(form.List)-1)
	for i, f := range form.List[1:] {
		n, err := Parse(e, host, f)
		if err != nil {
			return nil, err
		}
		rands[i] = n
	}
	return ast.NewApplication(form, rator, rands), nil
}

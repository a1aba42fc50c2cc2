package valueparser

import (
	"testing"

	"github.com/mlcore/hindley/internal/ast"
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/sexp"
)

func mustParse(t *testing.T, src string) ast.Node {
	t.Helper()
	form, err := sexp.Parse(src)
	if err != nil {
		t.Fatalf("sexp.Parse(%q): %v", src, err)
	}
	node, err := Parse(env.New(), NoMacros{}, form)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return node
}

func TestParseLiteral(t *testing.T) {
	n := mustParse(t, "42")
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Value != 42 {
		t.Fatalf("Parse(42) = %#v", n)
	}
}

func TestParseVariable(t *testing.T) {
	n := mustParse(t, "x")
	v, ok := n.(*ast.Variable)
	if !ok || v.Name != "x" {
		t.Fatalf("Parse(x) = %#v", n)
	}
}

func TestParseAbstraction(t *testing.T) {
	n := mustParse(t, "(fn (x y) x)")
	abs, ok := n.(*ast.Abstraction)
	if !ok {
		t.Fatalf("Parse(fn ...) = %T", n)
	}
	if len(abs.Params) != 2 || abs.Params[0] != "x" || abs.Params[1] != "y" {
		t.Errorf("params = %v", abs.Params)
	}
	if _, ok := abs.Body.(*ast.Variable); !ok {
		t.Errorf("body = %T, want *ast.Variable", abs.Body)
	}
}

func TestParseLetAndLetrec(t *testing.T) {
	let := mustParse(t, "(let ((x 1)) x)")
	if _, ok := let.(*ast.Let); !ok {
		t.Fatalf("Parse(let ...) = %T", let)
	}
	letrec := mustParse(t, "(letrec ((x 1)) x)")
	if _, ok := letrec.(*ast.Letrec); !ok {
		t.Fatalf("Parse(letrec ...) = %T", letrec)
	}
}

func TestParseIf(t *testing.T) {
	n := mustParse(t, "(if x 1 2)")
	iff, ok := n.(*ast.If)
	if !ok {
		t.Fatalf("Parse(if ...) = %T", n)
	}
	if _, ok := iff.Cond.(*ast.Variable); !ok {
		t.Errorf("cond = %T", iff.Cond)
	}
}

func TestParseSequence(t *testing.T) {
	n := mustParse(t, "(progn 1 2 3)")
	seq, ok := n.(*ast.Sequence)
	if !ok || len(seq.Items) != 3 {
		t.Fatalf("Parse(progn ...) = %#v", n)
	}
}

func TestParseApplication(t *testing.T) {
	n := mustParse(t, "(f 1 2)")
	app, ok := n.(*ast.Application)
	if !ok || len(app.Rands) != 2 {
		t.Fatalf("Parse(f 1 2) = %#v", n)
	}
	if _, ok := app.Rator.(*ast.Variable); !ok {
		t.Errorf("rator = %T, want *ast.Variable", app.Rator)
	}
}

func TestParseHostEscape(t *testing.T) {
	n := mustParse(t, "(lisp Int (+ 1 2))")
	esc, ok := n.(*ast.HostEscape)
	if !ok {
		t.Fatalf("Parse(lisp ...) = %T", n)
	}
	if esc.Raw.String() != "(+ 1 2)" {
		t.Errorf("Raw = %s", esc.Raw.String())
	}
}

func TestParseEmptyApplicationFails(t *testing.T) {
	form, _ := sexp.Parse("()")
	_, err := Parse(env.New(), NoMacros{}, form)
	he, ok := err.(*herr.Error)
	if !ok || he.Kind != herr.ParseError {
		t.Fatalf("got %v, want ParseError", err)
	}
}

type stubHost struct {
	expanded *sexp.Form
}

func (stubHost) IsMacro(name string) bool { return name == "unless" }

func (s stubHost) Expand(form *sexp.Form) (*sexp.Form, error) {
	// (unless c a b) => (if c b a)
	return sexp.List(sexp.Sym("if"), form.List[1], form.List[3], form.List[2]), nil
}

func TestParseMacroExpansion(t *testing.T) {
	form, err := sexp.Parse("(unless x 1 2)")
	if err != nil {
		t.Fatalf("sexp.Parse: %v", err)
	}
	node, err := Parse(env.New(), stubHost{}, form)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	iff, ok := node.(*ast.If)
	if !ok {
		t.Fatalf("macro expansion did not produce an If, got %T", node)
	}
	if iff.String() != "(if x 2 1)" {
		t.Errorf("expanded = %s", iff.String())
	}
}

package elaborate

import (
	"testing"

	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
	"github.com/mlcore/hindley/internal/valueparser"
)

func mustForm(t *testing.T, src string) *sexp.Form {
	t.Helper()
	f, err := sexp.Parse(src)
	if err != nil {
		t.Fatalf("sexp.Parse(%q): %v", src, err)
	}
	return f
}

func TestElaborateDeclare(t *testing.T) {
	e := env.New()
	d, warn, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(declare x Int)"))
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if d != nil || warn != nil {
		t.Errorf("declare should emit no descriptor and no warning, got %v / %v", d, warn)
	}
	info := e.LookupTerm("x")
	if info == nil || types.String(info.Declared) != "Int" {
		t.Fatalf("x was not forward-declared with type Int: %#v", info)
	}
}

func TestElaborateDefineSimple(t *testing.T) {
	e := env.New()
	d, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define x 1)"))
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if d.Kind != DescribeDefine || d.Name != "x" {
		t.Fatalf("unexpected descriptor: %#v", d)
	}
	if types.String(d.Type) != "Int" {
		t.Errorf("d.Type = %s, want Int", types.String(d.Type))
	}
}

func TestElaborateDefineFunctionSugar(t *testing.T) {
	e := env.New()
	d, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define (id x) x)"))
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if types.String(d.Type) != "a -> a" {
		t.Errorf("d.Type = %s, want a -> a", types.String(d.Type))
	}
}

func TestElaborateDefineRedefinitionIsAssign(t *testing.T) {
	e := env.New()
	if _, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define x 1)")); err != nil {
		t.Fatalf("first define: %v", err)
	}
	d, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define x 2)"))
	if err != nil {
		t.Fatalf("second define: %v", err)
	}
	if d.Kind != DescribeAssign {
		t.Errorf("redefining x should produce DescribeAssign, got %v", d.Kind)
	}
}

func TestElaborateDefineAfterDeclareIsStillDefine(t *testing.T) {
	e := env.New()
	if _, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(declare x Int)")); err != nil {
		t.Fatalf("declare: %v", err)
	}
	d, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define x 1)"))
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if d.Kind != DescribeDefine {
		t.Errorf("define after a bare declare should be DescribeDefine, not %v", d.Kind)
	}
}

func TestElaborateDefineTypeMaybe(t *testing.T) {
	e := env.New()
	d, warn, err := Elaborate(e, valueparser.NoMacros{},
		mustForm(t, "(define-type (Maybe a) Nothing (Just a))"))
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if warn != nil {
		t.Fatalf("first define-type should not warn, got %v", warn)
	}
	if d.Kind != DescribeDataType || d.TyCon.Name != "Maybe" || d.TyCon.Arity != 1 {
		t.Fatalf("unexpected descriptor: %#v", d)
	}
	if len(d.Ctors) != 2 {
		t.Fatalf("got %d ctors, want 2", len(d.Ctors))
	}

	var nothing, just *CtorDescriptor
	for i := range d.Ctors {
		switch d.Ctors[i].Name {
		case "Nothing":
			nothing = &d.Ctors[i]
		case "Just":
			just = &d.Ctors[i]
		}
	}
	if nothing == nil || just == nil {
		t.Fatalf("missing constructors: %#v", d.Ctors)
	}
	if got := types.String(nothing.Type); got != "(Maybe a)" {
		t.Errorf("Nothing type = %s, want (Maybe a)", got)
	}
	if got := types.String(just.Type); got != "a -> (Maybe a)" {
		t.Errorf("Just type = %s, want a -> (Maybe a)", got)
	}
	if just.PredicateName != "Just-P" {
		t.Errorf("PredicateName = %q, want %q", just.PredicateName, "Just-P")
	}
	if got := types.String(just.PredicateType); got != "(Maybe a) -> Bool" {
		t.Errorf("Just-P type = %s, want (Maybe a) -> Bool", got)
	}

	// Both constructors were registered as terms, and a subsequent
	// application should type-check against them.
	if e.LookupTerm("Just") == nil || e.LookupTerm("Nothing") == nil || e.LookupTerm("Just-P") == nil {
		t.Fatal("define-type did not register its constructors/predicates as terms")
	}
}

func TestElaborateDefineTypeUsedByDefine(t *testing.T) {
	e := env.New()
	if _, _, err := Elaborate(e, valueparser.NoMacros{},
		mustForm(t, "(define-type (Maybe a) Nothing (Just a))")); err != nil {
		t.Fatalf("define-type: %v", err)
	}
	d, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define x (Just 1))"))
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if got := types.String(d.Type); got != "(Maybe Int)" {
		t.Errorf("Just 1 :: %s, want (Maybe Int)", got)
	}
}

func TestElaborateDefineTypeClobberWarns(t *testing.T) {
	e := env.New()
	if _, _, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define-type (Box a) (MkBox a))")); err != nil {
		t.Fatalf("first define-type: %v", err)
	}
	_, warn, err := Elaborate(e, valueparser.NoMacros{}, mustForm(t, "(define-type (Box a) (MkBox a))"))
	if err != nil {
		t.Fatalf("second define-type: %v", err)
	}
	if warn == nil {
		t.Fatal("redefining Box should warn")
	}
}

func TestElaborateAllFlattensBegin(t *testing.T) {
	e := env.New()
	forms := []*sexp.Form{
		mustForm(t, "(begin (declare x Int) (begin (define x 1)))"),
	}
	descriptors, _, err := ElaborateAll(e, valueparser.NoMacros{}, forms)
	if err != nil {
		t.Fatalf("ElaborateAll: %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("got %d descriptors, want 1 (declare emits none)", len(descriptors))
	}
	if descriptors[0].Name != "x" {
		t.Errorf("descriptor name = %q, want x", descriptors[0].Name)
	}
}

package ast

import (
	"testing"

	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
)

func TestNodeStrings(t *testing.T) {
	x := NewVariable(nil, "x")
	lit := NewLiteral(nil, 7)
	abs := NewAbstraction(nil, []string{"x", "y"}, x)
	app := NewApplication(nil, x, []Node{lit, x})
	let := NewLet(nil, []Binding{{Name: "x", Body: lit}}, x)
	letrec := NewLetrec(nil, []Binding{{Name: "x", Body: lit}}, x)
	ifNode := NewIf(nil, x, lit, lit)
	seq := NewSequence(nil, []Node{lit, x})

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"variable", x, "x"},
		{"literal", lit, "7"},
		{"abstraction", abs, "(fn (x y) x)"},
		{"application", app, "(x 7 x)"},
		{"let", let, "(let ((x 7)) x)"},
		{"letrec", letrec, "(letrec ((x 7)) x)"},
		{"if", ifNode, "(if x 7 7)"},
		{"sequence", seq, "(progn 7 x)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplicationWithNoRands(t *testing.T) {
	n := NewApplication(nil, NewVariable(nil, "f"), nil)
	if got := n.String(); got != "(f)" {
		t.Errorf("String() = %q, want %q", got, "(f)")
	}
}

func TestSetTypeAndTypeOf(t *testing.T) {
	n := NewVariable(nil, "x")
	if TypeOf(n) != nil {
		t.Fatal("a freshly-parsed node should have no type yet")
	}
	intCon := &types.TyCon{Name: "Int"}
	intT := &types.App{Con: intCon}
	SetType(n, intT)
	if TypeOf(n) != intT {
		t.Errorf("TypeOf(n) = %v, want %v", TypeOf(n), intT)
	}
}

func TestHostEscapeCarriesTrustedType(t *testing.T) {
	boolCon := &types.TyCon{Name: "Bool"}
	boolT := &types.App{Con: boolCon}
	esc := NewHostEscape(nil, boolT, sexp.Sym("native-predicate"))
	if TypeOf(esc) != boolT {
		t.Error("HostEscape's type should be set at construction, not left nil")
	}
}

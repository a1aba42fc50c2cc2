package sexp

import "testing"

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Form
	}{
		{"positive int", "42", Int(42)},
		{"negative int", "-7", Int(-7)},
		{"symbol", "foo", Sym("foo")},
		{"operator symbol", "+", Sym("+")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.src, err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("Parse(%q) = %s, want %s", tt.src, got.String(), tt.want.String())
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got, err := Parse("(fn (x) x)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "(fn (x) x)"
	if got.String() != want {
		t.Errorf("Parse(...).String() = %q, want %q", got.String(), want)
	}
	if got.Kind != KindList || len(got.List) != 3 {
		t.Fatalf("unexpected shape: %+v", got)
	}
}

func TestParseNested(t *testing.T) {
	got, err := Parse("(+ 1 (* 2 3))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.String() != "(+ 1 (* 2 3))" {
		t.Errorf("got %s", got.String())
	}
}

func TestParseIgnoresComments(t *testing.T) {
	got, err := Parse("(+ 1 2) ; trailing comment")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.String() != "(+ 1 2)" {
		t.Errorf("got %s", got.String())
	}
}

func TestParseAllMultipleForms(t *testing.T) {
	forms, err := ParseAll("(declare x Int)\n(define x 1)")
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
	if forms[0].String() != "(declare x Int)" || forms[1].String() != "(define x 1)" {
		t.Errorf("unexpected forms: %s / %s", forms[0].String(), forms[1].String())
	}
}

func TestParseTracksPosition(t *testing.T) {
	forms, err := ParseAll("(a)\n(b)")
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if forms[0].Pos.Line != 1 || forms[1].Pos.Line != 2 {
		t.Errorf("positions = %d, %d; want 1, 2", forms[0].Pos.Line, forms[1].Pos.Line)
	}
}

func TestParseEmptyListIsAccepted(t *testing.T) {
	// The reader accepts "()" structurally; rejecting it is the value
	// parser's job (an empty application), not the reader's.
	got, err := Parse("()")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind != KindList || len(got.List) != 0 {
		t.Errorf("Parse(()) = %+v, want empty list", got)
	}
}

func TestParseMalformedErrors(t *testing.T) {
	if _, err := Parse("(foo"); err == nil {
		t.Error("Parse of unbalanced input should fail")
	}
}

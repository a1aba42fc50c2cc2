// Package sexp is the reader for the surface syntax: tree-structured data
// made of integer atoms, symbol atoms, and proper lists thereof. A host
// embedding this engine may construct Forms directly (e.g. from its own
// native data); Parse and ParseAll exist so the engine can also be driven
// from textual source, which is how the test suite and the CLI in cmd/hmc
// exercise it.
package sexp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Kind discriminates the three shapes a Form can take.
type Kind int

const (
	KindInt Kind = iota
	KindSymbol
	KindList
)

// Form is one surface node: an integer literal, a symbol, or a list of
// sub-forms. It is intentionally untyped with respect to the language's
// grammar (fn, let, if, ...) - recognising those shapes is the job of the
// type parser and value parser, not the reader.
type Form struct {
	Kind   Kind
	Int    int64
	Symbol string
	List   []*Form
	Pos    lexer.Position
}

func (f *Form) String() string {
	switch f.Kind {
	case KindInt:
		return strconv.FormatInt(f.Int, 10)
	case KindSymbol:
		return f.Symbol
	case KindList:
		parts := make([]string, len(f.List))
		for i, e := range f.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "<invalid form>"
	}
}

// Int builds an integer-atom Form, chiefly for tests and for host code that
// wants to hand-build forms without going through the text reader.
func Int(v int64) *Form { return &Form{Kind: KindInt, Int: v} }

// Sym builds a symbol-atom Form.
func Sym(name string) *Form { return &Form{Kind: KindSymbol, Symbol: name} }

// List builds a list Form from already-built elements.
func List(elems ...*Form) *Form { return &Form{Kind: KindList, List: elems} }

var formLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Symbol", Pattern: `[A-Za-z_+\-*/=<>!?][A-Za-z0-9_+\-*/=<>!?]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// rawForm is the participle grammar for a single form; Parse converts it to
// the public Form type so the rest of the engine never depends on
// participle's Capture machinery.
type rawForm struct {
	Pos    lexer.Position
	Int    *int64     `(@Int`
	Symbol *string    `| @Symbol`
	Sub    []*rawForm `| "(" @@* ")")`
}

type rawProgram struct {
	Forms []*rawForm `@@*`
}

var (
	formParser    = mustBuild[rawForm]()
	programParser = mustBuild[rawProgram]()
)

func mustBuild[T any]() *participle.Parser[T] {
	p, err := participle.Build[T](
		participle.Lexer(formLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic("sexp: failed to build parser: " + err.Error())
	}
	return p
}

func toForm(r *rawForm) *Form {
	switch {
	case r.Int != nil:
		return &Form{Kind: KindInt, Int: *r.Int, Pos: r.Pos}
	case r.Symbol != nil:
		return &Form{Kind: KindSymbol, Symbol: *r.Symbol, Pos: r.Pos}
	default:
		list := make([]*Form, len(r.Sub))
		for i, s := range r.Sub {
			list[i] = toForm(s)
		}
		return &Form{Kind: KindList, List: list, Pos: r.Pos}
	}
}

// Parse reads exactly one surface form from source.
func Parse(source string) (*Form, error) {
	r, err := formParser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("sexp: %w", err)
	}
	return toForm(r), nil
}

// ParseAll reads every top-level form in source, in order. This is what
// feeds the top-level elaborator when source comes from a file or a REPL
// batch rather than from a host that already holds parsed data.
func ParseAll(source string) ([]*Form, error) {
	r, err := programParser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("sexp: %w", err)
	}
	forms := make([]*Form, len(r.Forms))
	for i, f := range r.Forms {
		forms[i] = toForm(f)
	}
	return forms, nil
}

// Package ast defines the typed abstract syntax produced by the value
// parser and consumed by the inference engine. Every node carries a Type
// field that starts nil and is filled in by package infer; the one exception
// is HostEscape, whose trusted type is set at construction.
package ast

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
)

// Node is the base interface every expression node satisfies.
type Node interface {
	fmt.Stringer
	Pos() lexer.Position
	node()
}

// base holds the fields common to every node: its type (nil until Infer
// runs, except for HostEscape) and the surface position it came from.
type base struct {
	Type Type
	Form *sexp.Form
}

// Type is re-exported so callers of this package do not need to also import
// package types just to read or set a node's inferred type.
type Type = types.Type

func (b *base) Pos() lexer.Position {
	if b.Form == nil {
		return lexer.Position{}
	}
	return b.Form.Pos
}

// Literal is an integer constant.
type Literal struct {
	base
	Value int64
}

// NewLiteral builds an integer literal node sourced from form.
func NewLiteral(form *sexp.Form, value int64) *Literal {
	return &Literal{base: base{Form: form}, Value: value}
}

func (l *Literal) node() {}
func (l *Literal) String() string {
	return fmt.Sprintf("%d", l.Value)
}

// Variable is a reference to a bound or top-level name.
type Variable struct {
	base
	Name string
}

// NewVariable builds a variable reference node sourced from form.
func NewVariable(form *sexp.Form, name string) *Variable {
	return &Variable{base: base{Form: form}, Name: name}
}

func (v *Variable) node() {}
func (v *Variable) String() string {
	return v.Name
}

// Abstraction is a lambda: (fn (params...) body).
type Abstraction struct {
	base
	Params []string
	Body   Node
}

// NewAbstraction builds a lambda node sourced from form.
func NewAbstraction(form *sexp.Form, params []string, body Node) *Abstraction {
	return &Abstraction{base: base{Form: form}, Params: params, Body: body}
}

func (a *Abstraction) node() {}
func (a *Abstraction) String() string {
	return fmt.Sprintf("(fn (%s) %s)", strings.Join(a.Params, " "), a.Body.String())
}

// Application is rator applied to rands: (rator rand...).
type Application struct {
	base
	Rator Node
	Rands []Node
}

// NewApplication builds an application node sourced from form.
func NewApplication(form *sexp.Form, rator Node, rands []Node) *Application {
	return &Application{base: base{Form: form}, Rator: rator, Rands: rands}
}

func (a *Application) node() {}
func (a *Application) String() string {
	parts := make([]string, len(a.Rands))
	for i, r := range a.Rands {
		parts[i] = r.String()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", a.Rator.String())
	}
	return fmt.Sprintf("(%s %s)", a.Rator.String(), strings.Join(parts, " "))
}

// Binding is one (name value) pair inside a let or letrec.
type Binding struct {
	Name string
	Body Node
}

// Let is non-recursive, let-polymorphic binding.
type Let struct {
	base
	Bindings []Binding
	Body     Node
}

// NewLet builds a let node sourced from form.
func NewLet(form *sexp.Form, bindings []Binding, body Node) *Let {
	return &Let{base: base{Form: form}, Bindings: bindings, Body: body}
}

func (l *Let) node() {}
func (l *Let) String() string {
	parts := make([]string, len(l.Bindings))
	for i, b := range l.Bindings {
		parts[i] = fmt.Sprintf("(%s %s)", b.Name, b.Body.String())
	}
	return fmt.Sprintf("(let (%s) %s)", strings.Join(parts, " "), l.Body.String())
}

// Letrec is mutually-recursive binding; every use inside the group is
// monomorphic, uses outside it are not.
type Letrec struct {
	base
	Bindings []Binding
	Body     Node
}

// NewLetrec builds a letrec node sourced from form.
func NewLetrec(form *sexp.Form, bindings []Binding, body Node) *Letrec {
	return &Letrec{base: base{Form: form}, Bindings: bindings, Body: body}
}

func (l *Letrec) node() {}
func (l *Letrec) String() string {
	parts := make([]string, len(l.Bindings))
	for i, b := range l.Bindings {
		parts[i] = fmt.Sprintf("(%s %s)", b.Name, b.Body.String())
	}
	return fmt.Sprintf("(letrec (%s) %s)", strings.Join(parts, " "), l.Body.String())
}

// If is a three-armed conditional.
type If struct {
	base
	Cond, Then, Else Node
}

// NewIf builds a conditional node sourced from form.
func NewIf(form *sexp.Form, cond, then, els Node) *If {
	return &If{base: base{Form: form}, Cond: cond, Then: then, Else: els}
}

func (i *If) node() {}
func (i *If) String() string {
	return fmt.Sprintf("(if %s %s %s)", i.Cond.String(), i.Then.String(), i.Else.String())
}

// Sequence evaluates each item in order; its type is the type of the last
// item, or unit if empty.
type Sequence struct {
	base
	Items []Node
}

// NewSequence builds a progn node sourced from form.
func NewSequence(form *sexp.Form, items []Node) *Sequence {
	return &Sequence{base: base{Form: form}, Items: items}
}

func (s *Sequence) node() {}
func (s *Sequence) String() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = it.String()
	}
	return fmt.Sprintf("(progn %s)", strings.Join(parts, " "))
}

// HostEscape is the "lisp" escape hatch: a raw host-language form annotated
// with its trusted result type.
type HostEscape struct {
	base
	Raw *sexp.Form
}

// NewHostEscape builds a host-escape node. t is trusted as the result type
// without further checking, per the spec's "lisp" form semantics.
func NewHostEscape(form *sexp.Form, t Type, raw *sexp.Form) *HostEscape {
	return &HostEscape{base: base{Form: form, Type: t}, Raw: raw}
}

func (h *HostEscape) node() {}
func (h *HostEscape) String() string {
	return fmt.Sprintf("(lisp %s %s)", types.String(h.Type), h.Raw.String())
}

// SetType records the type inference assigned to a node. Nodes are always
// used by pointer, so this mutation is visible to every holder of the node.
func SetType(n Node, t Type) {
	switch nn := n.(type) {
	case *Literal:
		nn.Type = t
	case *Variable:
		nn.Type = t
	case *Abstraction:
		nn.Type = t
	case *Application:
		nn.Type = t
	case *Let:
		nn.Type = t
	case *Letrec:
		nn.Type = t
	case *If:
		nn.Type = t
	case *Sequence:
		nn.Type = t
	case *HostEscape:
		nn.Type = t
	}
}

// TypeOf reads the type previously assigned to a node, or nil if none has
// been assigned yet (a HostEscape has its type from construction).
func TypeOf(n Node) Type {
	switch nn := n.(type) {
	case *Literal:
		return nn.Type
	case *Variable:
		return nn.Type
	case *Abstraction:
		return nn.Type
	case *Application:
		return nn.Type
	case *Let:
		return nn.Type
	case *Letrec:
		return nn.Type
	case *If:
		return nn.Type
	case *Sequence:
		return nn.Type
	case *HostEscape:
		return nn.Type
	default:
		return nil
	}
}

// Package herr defines the error taxonomy shared by the parser, the
// unifier, and the inference engine, and formats those errors with the
// source-position context the surface form carried in from the reader.
//
// Propagation policy: every error here aborts the top-level form that
// produced it. Nothing in this engine attempts to recover and continue with
// a dummy type.
package herr

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind names one of the conceptual error categories from the taxonomy.
// Redefinition is the one recoverable case: it is a warning, not a failure,
// and callers may choose to proceed after seeing one.
type Kind string

const (
	ParseError      Kind = "ParseError"
	UnknownTyCon    Kind = "UnknownTyCon"
	TyConArity      Kind = "TyConArity"
	UnboundVariable Kind = "UnboundVariable"
	TypeMismatch    Kind = "TypeMismatch"
	ArityMismatch   Kind = "ArityMismatch"
	InfiniteType    Kind = "InfiniteType"
	Redefinition    Kind = "Redefinition"
)

// Error is a positioned failure in one of the taxonomy's categories.
type Error struct {
	Kind    Kind
	Message string
	Pos     lexer.Position
	Source  string // full source text, for caret formatting; may be empty
}

func New(kind Kind, pos lexer.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// WithSource attaches the source text so Format can render a caret under the
// offending column.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

func (e *Error) Error() string { return e.Format() }

// Format renders "Kind at line:col: message", plus a source line and caret
// when Source is available.
func (e *Error) Format() string {
	var sb strings.Builder
	if e.Pos.Line > 0 {
		fmt.Fprintf(&sb, "%s at %d:%d: %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Message)
	}

	if e.Source == "" || e.Pos.Line <= 0 {
		return sb.String()
	}
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return sb.String()
	}
	line := lines[e.Pos.Line-1]
	sb.WriteString("\n  ")
	sb.WriteString(line)
	sb.WriteString("\n  ")
	if e.Pos.Column > 1 {
		sb.WriteString(strings.Repeat(" ", e.Pos.Column-1))
	}
	sb.WriteString("^")
	return sb.String()
}

// Redefined is the payload of a Redefinition warning: it carries both the
// prior and new facts so a driver can decide whether to warn, error, or
// silently proceed, per the clobber-with-warning design.
type Redefined struct {
	Name  string
	Prior any
	New   any
}

func (r *Redefined) Error() string {
	return fmt.Sprintf("%s: %s clobbers a previous definition", Redefinition, r.Name)
}

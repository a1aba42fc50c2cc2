// Package hostconfig loads the one piece of host-supplied configuration
// this engine depends on: the table of macro names and expansion templates
// backing the "expand" callback the value parser invokes. It implements
// valueparser.Host directly, so a loaded Manifest is a value parser's macro
// boundary with no adapter layer in between.
package hostconfig

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mlcore/hindley/internal/sexp"
)

// Manifest maps macro names to a template surface form with "{0}", "{1}",
// ... placeholders, substituted positionally by the macro call's argument
// forms before the result is re-parsed. The backing representation is JSON
// text, read with gjson and mutated with sjson, rather than an in-memory
// struct, so a manifest round-trips losslessly through a config file on
// disk between CLI invocations.
type Manifest struct {
	raw    string
	macros map[string]string
}

// Empty returns a Manifest with no registered macros.
func Empty() *Manifest {
	return &Manifest{raw: `{"macros":{}}`, macros: make(map[string]string)}
}

// Load parses a manifest of the shape {"macros": {"name": "(template ...)"}}.
func Load(source string) (*Manifest, error) {
	if !gjson.Valid(source) {
		return nil, fmt.Errorf("hostconfig: invalid manifest JSON")
	}
	m := &Manifest{raw: source, macros: make(map[string]string)}
	gjson.Get(source, "macros").ForEach(func(key, value gjson.Result) bool {
		m.macros[key.String()] = value.String()
		return true
	})
	return m, nil
}

// IsMacro reports whether name is a registered macro, satisfying
// valueparser.Host.
func (m *Manifest) IsMacro(name string) bool {
	_, ok := m.macros[name]
	return ok
}

// Expand renders the macro named by form's head against form's argument
// forms and re-reads the result, satisfying valueparser.Host. The
// expansion is pure and deterministic, per the engine's boundary contract:
// the same form always expands to the same result.
func (m *Manifest) Expand(form *sexp.Form) (*sexp.Form, error) {
	if len(form.List) == 0 || form.List[0].Kind != sexp.KindSymbol {
		return nil, fmt.Errorf("hostconfig: macro call must be a list headed by a symbol")
	}
	name := form.List[0].Symbol
	tmpl, ok := m.macros[name]
	if !ok {
		return nil, fmt.Errorf("hostconfig: %q is not a registered macro", name)
	}
	rendered := tmpl
	for i, arg := range form.List[1:] {
		rendered = strings.ReplaceAll(rendered, fmt.Sprintf("{%d}", i), arg.String())
	}
	return sexp.Parse(rendered)
}

// Register adds or replaces name's template, persists the change into the
// manifest's backing JSON, and returns the updated JSON text.
func (m *Manifest) Register(name, template string) (string, error) {
	updated, err := sjson.Set(m.raw, "macros."+name, template)
	if err != nil {
		return "", fmt.Errorf("hostconfig: registering macro %q: %w", name, err)
	}
	m.raw = updated
	m.macros[name] = template
	return updated, nil
}

// Names returns every registered macro name, in no particular order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.macros))
	for n := range m.macros {
		names = append(names, n)
	}
	return names
}

// JSON returns the manifest's current backing JSON text.
func (m *Manifest) JSON() string { return m.raw }

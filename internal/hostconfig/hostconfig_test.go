package hostconfig

import (
	"testing"

	"github.com/mlcore/hindley/internal/sexp"
)

func TestLoadAndIsMacro(t *testing.T) {
	m, err := Load(`{"macros":{"unless":"(if {0} {2} {1})"}}`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.IsMacro("unless") {
		t.Error("IsMacro(unless) = false, want true")
	}
	if m.IsMacro("never-registered") {
		t.Error("IsMacro(never-registered) = true, want false")
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	if _, err := Load("not json"); err == nil {
		t.Fatal("Load of invalid JSON should fail")
	}
}

func TestExpandSubstitutesPositionally(t *testing.T) {
	m, err := Load(`{"macros":{"unless":"(if {0} {2} {1})"}}`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	call, err := sexp.Parse("(unless x 1 2)")
	if err != nil {
		t.Fatalf("sexp.Parse: %v", err)
	}
	expanded, err := m.Expand(call)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got := expanded.String(); got != "(if x 2 1)" {
		t.Errorf("Expand = %s, want (if x 2 1)", got)
	}
}

func TestExpandUnknownMacroErrors(t *testing.T) {
	m := Empty()
	call, _ := sexp.Parse("(ghost 1)")
	if _, err := m.Expand(call); err == nil {
		t.Fatal("Expand of an unregistered macro should fail")
	}
}

func TestRegisterPersistsIntoJSON(t *testing.T) {
	m := Empty()
	updated, err := m.Register("twice", "(* 2 {0})")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !m.IsMacro("twice") {
		t.Error("Register did not make the macro immediately usable")
	}

	reloaded, err := Load(updated)
	if err != nil {
		t.Fatalf("Load(updated): %v", err)
	}
	if !reloaded.IsMacro("twice") {
		t.Error("the registered macro did not round-trip through the persisted JSON")
	}
}

func TestNamesListsRegisteredMacros(t *testing.T) {
	m, err := Load(`{"macros":{"a":"1","b":"2"}}`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	names := m.Names()
	if len(names) != 2 {
		t.Fatalf("Names() = %v, want 2 entries", names)
	}
}

package errors

import (
	"strings"
	"testing"
)

func TestStructuralErrorUnwrap(t *testing.T) {
	err := NewStructural("individuals[@I1@]", "record has no uuid")
	if !Is(err, ErrStructural) {
		t.Error("structural error does not unwrap to sentinel")
	}
	if !strings.Contains(err.Error(), "individuals[@I1@]") {
		t.Errorf("message missing path: %q", err.Error())
	}

	var target *StructuralError
	if !As(err, &target) {
		t.Fatal("As failed for StructuralError")
	}
	if target.Path != "individuals[@I1@]" {
		t.Errorf("path = %q", target.Path)
	}
}

func TestUnresolvedReferenceError(t *testing.T) {
	err := NewUnresolved("FAM", "@F9@")
	if !Is(err, ErrUnresolvedReference) {
		t.Error("unresolved error does not unwrap to sentinel")
	}
	if !strings.Contains(err.Error(), "@F9@") {
		t.Errorf("message missing pointer: %q", err.Error())
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfiguration("default_jurisdiction_system", "must be set")
	if !Is(err, ErrConfiguration) {
		t.Error("configuration error does not unwrap to sentinel")
	}
	if !strings.Contains(err.Error(), "default_jurisdiction_system") {
		t.Errorf("message missing field: %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil should stay nil")
	}
	base := NewConfiguration("x", "y")
	wrapped := Wrapf(base, "loading %s", "config.yaml")
	if !Is(wrapped, ErrConfiguration) {
		t.Error("wrapping lost the sentinel")
	}
	if !strings.Contains(wrapped.Error(), "config.yaml") {
		t.Errorf("wrapped message = %q", wrapped.Error())
	}
}

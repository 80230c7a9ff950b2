package millerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorStringWithAndWithoutCause(t *testing.T) {
	e := New(InvalidRequest, "bad input", nil)
	if e.Error() != "E_INVALID_REQUEST: bad input" {
		t.Errorf("got %q", e.Error())
	}

	wrapped := Wrap(IOError, "reading file", errors.New("permission denied"))
	want := "E_IO_ERROR: reading file: permission denied"
	if wrapped.Error() != want {
		t.Errorf("got %q, want %q", wrapped.Error(), want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(Internal, "failed", cause)
	if errors.Unwrap(e) != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
	if !errors.Is(e, cause) {
		t.Error("errors.Is should see through to the cause")
	}
}

func TestCodeOf_DirectError(t *testing.T) {
	err := New(PlanConflict, "conflict", nil)
	if CodeOf(err) != PlanConflict {
		t.Errorf("got %v, want %v", CodeOf(err), PlanConflict)
	}
}

func TestCodeOf_WrappedThroughFmtErrorf(t *testing.T) {
	inner := New(ChecksumMismatch, "stale", nil)
	outer := fmt.Errorf("precheck: %w", inner)
	if CodeOf(outer) != ChecksumMismatch {
		t.Errorf("got %v, want %v", CodeOf(outer), ChecksumMismatch)
	}
}

func TestCodeOf_PlainErrorDefaultsToInternal(t *testing.T) {
	if CodeOf(errors.New("plain")) != Internal {
		t.Error("a plain error should default to Internal")
	}
}

func TestCodeOf_NilDefaultsToInternal(t *testing.T) {
	if CodeOf(nil) != Internal {
		t.Error("nil should default to Internal")
	}
}

func TestUnsupportedLanguageErr(t *testing.T) {
	e := UnsupportedLanguageErr("zig")
	if e.Code != UnsupportedLanguage {
		t.Errorf("got code %v", e.Code)
	}
	if e.Detail["extension"] != "zig" {
		t.Errorf("expected extension detail, got %+v", e.Detail)
	}
}

func TestCapabilityNotSupportedErr(t *testing.T) {
	e := CapabilityNotSupportedErr("workspace_support", "C")
	if e.Code != CapabilityNotSupported {
		t.Errorf("got code %v", e.Code)
	}
	if e.Detail["capability"] != "workspace_support" || e.Detail["language"] != "C" {
		t.Errorf("unexpected detail: %+v", e.Detail)
	}
}

func TestChecksumMismatchErr(t *testing.T) {
	e := ChecksumMismatchErr("/a.go")
	if e.Code != ChecksumMismatch {
		t.Errorf("got code %v", e.Code)
	}
	if e.Detail["path"] != "/a.go" {
		t.Errorf("unexpected detail: %+v", e.Detail)
	}
}

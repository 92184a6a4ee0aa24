package errors

import (
	stdErrors "errors"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "fetch transactions")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found with errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: fetch transactions" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeNotFound, "case missing")
	wrapped := Wrap(CodeDependency, inner, "reconcile")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}
	if !HasCode(wrapped, CodeDependency) {
		t.Fatal("HasCode should match the outer code")
	}
}

func TestDumpBuildsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("boom"), "apply event")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(d.Chain))
	}
}

package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "directory not found")
		if err.Error() != "[NOT_FOUND] directory not found" {
			t.Errorf("expected [NOT_FOUND] directory not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("permission denied")
		err := Wrap(original, CodeIO, "read declaration file")
		expected := "[IO_ERROR] read declaration file: permission denied"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid format")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
		if IsCode(errors.New("plain"), CodeInternal) {
			t.Error("expected IsCode to return false for a non-domain error")
		}
	})

	t.Run("AddContextToDomainError", func(t *testing.T) {
		err := Wrap(fs.ErrNotExist, CodeNotFound, "scan directory")
		err = AddContext(err, CtxPath, "reqs")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected a DomainError")
		}
		if de.Context[CtxPath] != "reqs" {
			t.Errorf("expected path context, got %v", de.Context)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Error("expected context-wrapped error to keep its cause")
		}
	})

	t.Run("AddContextToPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxOperation, "parse")
		if !IsCode(err, CodeInternal) {
			t.Errorf("expected plain errors to become internal, got %v", err)
		}
	})
}

package rvdata

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	// Verify all errors are defined and distinct
	errs := []error{
		ErrFormat,
		ErrType,
		ErrUnsupported,
		ErrDecompress,
		ErrCorruptTable,
		ErrAlgorithm,
	}

	for i, err := range errs {
		if err == nil {
			t.Errorf("error at index %d is nil", i)
		}
	}

	seen := make(map[string]int)
	for i, err := range errs {
		msg := err.Error()
		if prev, ok := seen[msg]; ok {
			t.Errorf("error at index %d has same message as index %d: %q", i, prev, msg)
		}
		seen[msg] = i
	}
}

func TestErrorsWrap(t *testing.T) {
	wrapped := fmt.Errorf("load Actors.rvdata2: %w", ErrFormat)
	if !errors.Is(wrapped, ErrFormat) {
		t.Error("wrapped ErrFormat not matched")
	}
	if errors.Is(wrapped, ErrType) {
		t.Error("ErrFormat matched ErrType")
	}
}

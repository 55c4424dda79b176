package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorUnwrapsThroughWrapping(t *testing.T) {
	base := &exitError{code: 130}
	wrapped := fmt.Errorf("chain: %w", base)

	var exit *exitError
	if !errors.As(wrapped, &exit) {
		t.Fatal("errors.As should find exitError through wrapping")
	}
	if exit.code != 130 {
		t.Errorf("code = %d, want 130", exit.code)
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &exitError{code: 3}
	if got := err.Error(); got != "exit code 3" {
		t.Errorf("Error() = %q, want %q", got, "exit code 3")
	}
}

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownEntity, "test error message")

	if err.Code != ErrCodeUnknownEntity {
		t.Errorf("expected code %s, got %s", ErrCodeUnknownEntity, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *EstimaError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeDuplicateEntity, "duplicate"),
			wantCode: "MODEL-002",
			wantMsg:  "duplicate",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
		{
			name:     "suggestions are listed",
			err:      NewInfeasibleParametersError(4, 2.5),
			wantCode: "ESTIM-002",
			wantMsg:  "larger than 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestInvalidOrderingNamesFailedInequality(t *testing.T) {
	tests := []struct {
		name       string
		o, m, p    float64
		wantFailed string
	}{
		{"optimistic above most likely", 3, 2, 5, "optimistic<=most_likely"},
		{"most likely above pessimistic", 1, 6, 5, "most_likely<=pessimistic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInvalidOrderingError(tt.o, tt.m, tt.p)
			failed, ok := err.Field("failed")
			if !ok || failed != tt.wantFailed {
				t.Errorf("failed field = %v, want %s", failed, tt.wantFailed)
			}
			if !strings.Contains(err.Error(), tt.wantFailed) {
				t.Errorf("message should name %s: %s", tt.wantFailed, err.Error())
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewUnknownEntityError("ghost"))

	if !errors.Is(err, New(ErrCodeUnknownEntity, "")) {
		t.Error("errors.Is should match on code through wrapping")
	}
	if errors.Is(err, New(ErrCodeDuplicateEntity, "")) {
		t.Error("errors.Is should not match a different code")
	}
	if !IsCode(err, ErrCodeUnknownEntity) {
		t.Error("IsCode should find the code through wrapping")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeUnknownEntity) {
		t.Error("IsCode should be false for plain errors")
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad").
		WithSuggestion("first").
		WithSuggestion("second")

	if len(err.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(err.Suggestions))
	}
	if !strings.Contains(err.Error(), "• second") {
		t.Errorf("suggestions should be rendered, got: %s", err.Error())
	}
}

package exitcode

import (
	"errors"
	"fmt"
	"testing"

	estimaerrors "github.com/felixgeelhaar/estima/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"InvalidInput", InvalidInput, 3},
		{"NotFound", NotFound, 4},
		{"Conflict", Conflict, 5},
		{"ConfigError", ConfigError, 6},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "invalid ordering",
			err:      estimaerrors.NewInvalidOrderingError(3, 2, 1),
			expected: InvalidInput,
		},
		{
			name:     "misshapen density",
			err:      estimaerrors.NewMisshapenDensityError("edge"),
			expected: InvalidInput,
		},
		{
			name:     "unknown task wrapped",
			err:      fmt.Errorf("tree: %w", estimaerrors.NewUnknownEntityError("a")),
			expected: NotFound,
		},
		{
			name:     "missing file",
			err:      estimaerrors.NewFileNotFoundError("board.yaml"),
			expected: NotFound,
		},
		{
			name:     "duplicate task",
			err:      estimaerrors.NewDuplicateEntityError("a"),
			expected: Conflict,
		},
		{
			name:     "cycle",
			err:      estimaerrors.NewCyclicCompositionError("a", "b"),
			expected: Conflict,
		},
		{
			name:     "bad config",
			err:      estimaerrors.NewConfigInvalidError("shape", "must be positive"),
			expected: ConfigError,
		},
		{
			name:     "unknown flag",
			err:      errors.New("unknown flag: --nope"),
			expected: UsageError,
		},
		{
			name:     "wrong arg count",
			err:      errors.New("accepts 1 arg(s), received 2"),
			expected: UsageError,
		},
		{
			name:     "flag group",
			err:      errors.New("at least one of the flags in the group [work estimate board] is required"),
			expected: UsageError,
		},
		{
			name:     "unparsable triple",
			err:      errors.New(`invalid triple "1,2": want optimistic,most_likely,pessimistic`),
			expected: UsageError,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	for _, code := range []int{Success, GeneralError, UsageError, InvalidInput, NotFound, Conflict, ConfigError, Interrupted} {
		if desc := GetExitCodeDescription(code); desc == "Unknown error" {
			t.Errorf("code %d has no description", code)
		}
	}
	if GetExitCodeDescription(99) != "Unknown error" {
		t.Error("expected unknown description for unmapped code")
	}
}

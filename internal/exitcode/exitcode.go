package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// InvalidInput indicates an estimate or density the engine rejected
	InvalidInput = 3

	// NotFound indicates an unknown task, composition or file
	NotFound = 4

	// Conflict indicates a duplicate name or a cyclic tree
	Conflict = 5

	// ConfigError indicates invalid settings
	ConfigError = 6

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code, by error code when the
// error carries one and by message otherwise.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code, ok := errors.CodeOf(err); ok {
		switch code {
		case errors.ErrCodeUnknownEntity, errors.ErrCodeFileNotFound:
			return NotFound
		case errors.ErrCodeDuplicateEntity, errors.ErrCodeCyclicComposition:
			return Conflict
		case errors.ErrCodeConfigInvalid:
			return ConfigError
		}
		switch {
		case strings.HasPrefix(string(code), "ESTIM-"), strings.HasPrefix(string(code), "DIST-"):
			return InvalidInput
		case code == errors.ErrCodeFileUnmarshal:
			return InvalidInput
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || (strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg")) {
		return UsageError
	}
	if strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "flags in the group") || strings.Contains(errMsg, "invalid triple") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case InvalidInput:
		return "Invalid estimate or distribution input"
	case NotFound:
		return "Unknown task, composition or file"
	case Conflict:
		return "Duplicate name or cyclic tree"
	case ConfigError:
		return "Invalid configuration"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Estimate errors (ESTIM-001 to ESTIM-099)
	ErrCodeInvalidOrdering      ErrorCode = "ESTIM-001"
	ErrCodeInfeasibleParameters ErrorCode = "ESTIM-002"

	// Model errors (MODEL-001 to MODEL-099)
	ErrCodeUnknownEntity     ErrorCode = "MODEL-001"
	ErrCodeDuplicateEntity   ErrorCode = "MODEL-002"
	ErrCodeCyclicComposition ErrorCode = "MODEL-003"

	// Distribution errors (DIST-001 to DIST-099)
	ErrCodeInvalidSampleSize   ErrorCode = "DIST-001"
	ErrCodeMisshapenDensity    ErrorCode = "DIST-002"
	ErrCodeInvalidDistribution ErrorCode = "DIST-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// Field is a structured value attached to an error for logging.
type Field struct {
	Key   string
	Value any
}

// EstimaError represents an error with code, context values and suggestions
type EstimaError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Fields      []Field
	Cause       error
}

// Error implements the error interface
func (e *EstimaError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *EstimaError) Unwrap() error {
	return e.Cause
}

// Is matches another *EstimaError by code, so a bare New(code, "") works as
// a target for errors.Is.
func (e *EstimaError) Is(target error) bool {
	var other *EstimaError
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// New creates a new EstimaError
func New(code ErrorCode, message string) *EstimaError {
	return &EstimaError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new EstimaError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *EstimaError {
	return &EstimaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *EstimaError) WithSuggestion(suggestion string) *EstimaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithField attaches a context value to the error
func (e *EstimaError) WithField(key string, value any) *EstimaError {
	e.Fields = append(e.Fields, Field{Key: key, Value: value})
	return e
}

// Field returns the value stored under key, if any.
func (e *EstimaError) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// CodeOf returns the code of the first EstimaError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *EstimaError
	if stderrors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// NewInvalidOrderingError reports a triple that violates
// optimistic <= most_likely <= pessimistic.
func NewInvalidOrderingError(optimistic, mostLikely, pessimistic float64) *EstimaError {
	failed := "most_likely<=pessimistic"
	if !(optimistic <= mostLikely) {
		failed = "optimistic<=most_likely"
	}
	return New(ErrCodeInvalidOrdering,
		fmt.Sprintf("invalid estimate ordering: %s does not hold for optimistic=%g, most_likely=%g, pessimistic=%g",
			failed, optimistic, mostLikely, pessimistic)).
		WithField("failed", failed).
		WithField("optimistic", optimistic).
		WithField("most_likely", mostLikely).
		WithField("pessimistic", pessimistic).
		WithSuggestion("Make sure optimistic <= most likely <= pessimistic")
}

// NewInfeasibleParametersError reports moments that no PERT triple with the
// given shape can reproduce.
func NewInfeasibleParametersError(shape int, skewness float64) *EstimaError {
	return New(ErrCodeInfeasibleParameters,
		fmt.Sprintf("no three-point estimate with shape %d has skewness %g", shape, skewness)).
		WithField("shape", shape).
		WithField("skewness", skewness).
		WithSuggestion(fmt.Sprintf("Retry with a shape larger than %d", shape))
}

// NewUnknownEntityError reports a name that is neither a task nor a composition.
func NewUnknownEntityError(name string) *EstimaError {
	return New(ErrCodeUnknownEntity, fmt.Sprintf("unknown task or composition: %q", name)).
		WithField("name", name)
}

// NewDuplicateEntityError reports an insertion of an existing task name.
func NewDuplicateEntityError(name string) *EstimaError {
	return New(ErrCodeDuplicateEntity, fmt.Sprintf("task %q already exists", name)).
		WithField("name", name).
		WithSuggestion("Task names must be unique across the whole tree")
}

// NewCyclicCompositionError reports an attempt to nest a composition into
// its own subtree.
func NewCyclicCompositionError(parent, child string) *EstimaError {
	return New(ErrCodeCyclicComposition,
		fmt.Sprintf("composition %q cannot be added under %q: it already contains it", child, parent)).
		WithField("parent", parent).
		WithField("child", child)
}

// NewInvalidSampleSizeError reports a density requested with too few samples.
func NewInvalidSampleSizeError(samples int) *EstimaError {
	return New(ErrCodeInvalidSampleSize, fmt.Sprintf("density needs at least 1 sample point, got %d", samples)).
		WithField("samples", samples)
}

// NewMisshapenDensityError reports a density array that is not zero-padded
// at its support boundary.
func NewMisshapenDensityError(detail string) *EstimaError {
	return New(ErrCodeMisshapenDensity, fmt.Sprintf("misshapen density: %s", detail)).
		WithSuggestion("Pad the density with zeros on both sides of its support")
}

// NewInvalidDistributionError reports parameters that do not define a distribution.
func NewInvalidDistributionError(detail string) *EstimaError {
	return New(ErrCodeInvalidDistribution, fmt.Sprintf("invalid distribution: %s", detail))
}

// NewConfigInvalidError reports a setting outside its allowed range.
func NewConfigInvalidError(key string, detail string) *EstimaError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid setting %s: %s", key, detail)).
		WithField("key", key)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *EstimaError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *EstimaError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

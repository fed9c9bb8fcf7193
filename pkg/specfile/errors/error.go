package errors

import (
	"fmt"
	"slices"
	"strings"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
)

// ErrorType categorizes the type of error encountered while reading,
// resolving or validating a specification.
type ErrorType string

const (
	ErrorTypeSyntax                ErrorType = "syntax"                 // YAML syntax or malformed directive
	ErrorTypeStructural            ErrorType = "structural"             // Unknown/missing section, kind or version mismatch
	ErrorTypeSemantic              ErrorType = "semantic"               // Section content, settings or expression errors
	ErrorTypeAmbiguousDistribution ErrorType = "ambiguous_distribution" // Zero or several distribution kinds set
	ErrorTypeUndeclaredVariable    ErrorType = "undeclared_variable"    // Reference to an unbound name
	ErrorTypeConfiguration         ErrorType = "configuration"          // Missing matrix, infeasible strategy
	ErrorTypeNotEnumerable         ErrorType = "not_enumerable"         // Enumerating a continuous distribution
	ErrorTypeNotReady              ErrorType = "not_ready"              // Accessor read before validation
	ErrorTypeIO                    ErrorType = "io"                     // File I/O error
)

// Error represents a rich error with section, field path, location, context
// and suggestions.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Section    string       // Top-level section the error belongs to (optional)
	Path       string       // Dotted field path, e.g. settings.matrix.lr (optional)
	Location   ast.Location // Source location (file, line, column)
	Context    string       // Surrounding lines of the source file
	Suggestion string       // Suggested fix (optional)
	Err        error        // Underlying cause (optional)
}

// New returns an error of the given type. The section is derived from path.
func New(errType ErrorType, path, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Section: ast.Section(path),
		Path:    path,
	}
}

// At sets the source location and returns the error.
func (e *Error) At(loc ast.Location) *Error {
	e.Location = loc
	return e
}

// WithSuggestion sets the suggestion and returns the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying cause and returns the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] ", e.Type))
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	} else if e.Section != "" {
		sb.WriteString(e.Section)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	sb.WriteString("\n")

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by error type.
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	if !ok {
		return false
	}
	return slices.Contains(s.types, e.Type)
}

// ErrorList represents a collection of errors encountered during validation.
// It allows accumulating multiple errors instead of failing on the first error.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error for the given field path.
func (el *ErrorList) AddError(errType ErrorType, path, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Section:  ast.Section(path),
		Path:     path,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, path, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Section:    ast.Section(path),
		Path:       path,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Merge appends every error of other. Plain errors are recorded as semantic.
func (el *ErrorList) Merge(err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *ErrorList:
		el.Errors = append(el.Errors, e.Errors...)
	case *Error:
		el.Add(e)
	default:
		el.Add(&Error{Type: ErrorTypeSemantic, Message: err.Error()})
	}
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	out := make([]error, len(el.Errors))
	for i, err := range el.Errors {
		out[i] = err
	}
	return out
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the error list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

package errors

import stderrors "errors"

// sentinel matches every *Error whose Type is one of types.
type sentinel struct {
	name  string
	types []ErrorType
}

func (s *sentinel) Error() string { return s.name }

// Sentinels for errors.Is. ErrSpecification covers every defect of the
// document itself; the others match a single error type.
var (
	ErrSyntax = &sentinel{"syntax error", []ErrorType{ErrorTypeSyntax}}

	ErrStructural = &sentinel{"structural error", []ErrorType{ErrorTypeStructural}}

	ErrSpecification = &sentinel{"specification error", []ErrorType{
		ErrorTypeSyntax,
		ErrorTypeStructural,
		ErrorTypeSemantic,
		ErrorTypeAmbiguousDistribution,
		ErrorTypeUndeclaredVariable,
	}}

	ErrAmbiguousDistribution = &sentinel{"ambiguous distribution", []ErrorType{ErrorTypeAmbiguousDistribution}}
	ErrUndeclaredVariable    = &sentinel{"undeclared variable", []ErrorType{ErrorTypeUndeclaredVariable}}
	ErrConfiguration         = &sentinel{"configuration error", []ErrorType{ErrorTypeConfiguration}}
	ErrNotEnumerable         = &sentinel{"not enumerable", []ErrorType{ErrorTypeNotEnumerable}}
	ErrNotReady              = &sentinel{"specification not ready", []ErrorType{ErrorTypeNotReady}}
	ErrIO                    = &sentinel{"io error", []ErrorType{ErrorTypeIO}}
)

// TypeOf returns the type of the first *Error in err's chain. An
// *ErrorList reports the type of its first entry. It returns "" when the
// chain holds neither.
func TypeOf(err error) ErrorType {
	var list *ErrorList
	if stderrors.As(err, &list) && len(list.Errors) > 0 {
		return list.Errors[0].Type
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

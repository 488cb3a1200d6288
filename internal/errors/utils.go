package errors

import (
	stderrors "errors"
	"strings"
)

// JoinErrors drops nil errors. Several remaining errors are folded into one
// whose type and status are those of the first, all of them kept as causes.
func JoinErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}

	errType := GetType(nonNil[0])
	if errType == "unknown" {
		errType = ErrTypeInternal
	}
	return New(errType, "multiple errors", stderrors.Join(nonNil...), GetCode(nonNil[0]))
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FormatErrorChain prints err with the stack of the outermost AppError, then
// every cause below it.
func FormatErrorChain(err error) string {
	if err == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(err.Error())
	if appErr, ok := AsAppError(err); ok && len(appErr.Stack) > 0 {
		b.WriteString("\nstack:")
		for _, frame := range appErr.Stack {
			b.WriteString("\n  ")
			b.WriteString(frame)
		}
	}
	for cause := stderrors.Unwrap(err); cause != nil; cause = stderrors.Unwrap(cause) {
		b.WriteString("\ncaused by: ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

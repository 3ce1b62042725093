package util

import "fmt"

type SubmitError struct {
	Code    SubmitErrorCode
	Message string

	// 1-based script line for directive errors, 0 when not applicable.
	Line int
}

func (e *SubmitError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func NewSubmitErr(code SubmitErrorCode, message string) *SubmitError {
	return &SubmitError{Code: code, Message: message}
}

func NewSubmitErrf(code SubmitErrorCode, format string, args ...any) *SubmitError {
	return &SubmitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewDirectiveErr(line int, format string, args ...any) *SubmitError {
	return &SubmitError{
		Code:    ErrorMalformedDirective,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

func WrapSubmitErr(code SubmitErrorCode, message string, err error) *SubmitError {
	return &SubmitError{Code: code, Message: fmt.Sprintf("%s: %s", message, err)}
}

// ErrCode extracts the taxonomy code, ErrorSuccess for nil and
// ErrorCmdArg for foreign error values.
func ErrCode(err error) SubmitErrorCode {
	if err == nil {
		return ErrorSuccess
	}
	if se, ok := err.(*SubmitError); ok {
		return se.Code
	}
	return ErrorCmdArg
}

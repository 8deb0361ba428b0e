// SPDX-License-Identifier: Apache-2.0

package athenaudf

import "fmt"

// ErrorCode classifies a protocol-level failure. Codes are stable strings
// so callers can branch on them without string-matching messages.
type ErrorCode string

const (
	CodeMalformedRequest   ErrorCode = "MalformedRequest"
	CodeUnknownRequestType ErrorCode = "UnknownRequestType"
	CodeUnknownFunction    ErrorCode = "UnknownFunction"
	CodeColumnTypeMismatch ErrorCode = "ColumnTypeMismatch"
	CodeDecodeError        ErrorCode = "DecodeError"
	CodeEncodeError        ErrorCode = "EncodeError"
	CodeBase64Error        ErrorCode = "Base64Error"
)

// ErrProtocol is a sentinel for use with errors.Is to check whether any
// error in a chain is a protocol *Error, regardless of code.
var ErrProtocol = &Error{}

// Error represents a failure in the Athena UDF protocol pipeline.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // underlying cause, nil if none
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is. A target with an empty code matches any protocol
// error; otherwise the codes must agree.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

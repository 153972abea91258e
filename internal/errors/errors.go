package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeUsage         ErrorCode = "USAGE"
	CodeConfig        ErrorCode = "CONFIG_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeLoad          ErrorCode = "LOAD_ERROR"
	CodeStdlibMissing ErrorCode = "STDLIB_MISSING"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// Exit codes shared by the CLI and the tests.
const (
	ExitSuccess        = 0
	ExitError          = 1
	ExitConfigError    = 2
	ExitUnhandledError = 3
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxBackend   = "backend"
	CtxPosition  = "position"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key to the first DomainError in the chain, wrapping
// plain errors as internal ones.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var de *DomainError
	if !errors.As(err, &de) {
		return ExitUnhandledError
	}
	switch de.Code {
	case CodeConfig:
		return ExitConfigError
	case CodeUsage, CodeNotFound:
		return ExitError
	default:
		return ExitUnhandledError
	}
}

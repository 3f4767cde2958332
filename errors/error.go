// Package errors provides the single error type used across this module,
// adapted from the teacher's errors/Error.go. Unlike the teacher, ERR is a
// hand-written enum rather than a protobuf-generated one (see codes.go).
package errors

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrData lets a caller attach additional structured context to an Error
// (e.g. a miner-info document validation error that names a txid/vout).
type ErrData interface {
	Error() string
}

type Error struct {
	Code       ERR
	Message    string
	WrappedErr error
	Data       ErrData
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	dataMsg := ""
	if e.Data != nil {
		dataMsg = e.Data.Error()
	}

	if e.WrappedErr == nil {
		if dataMsg == "" {
			return fmt.Sprintf("%s: %s", e.Code, e.Message)
		}
		return fmt.Sprintf("%s: %s, data: %s", e.Code, e.Message, dataMsg)
	}

	if dataMsg == "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.WrappedErr)
	}

	return fmt.Sprintf("%s: %s: %v, data: %s", e.Code, e.Message, e.WrappedErr, dataMsg)
}

// Is reports whether error codes match, walking WrappedErr chains.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	var ue *Error
	if errors.As(target, &ue) {
		if e.Code == ue.Code {
			return true
		}
		if e.WrappedErr == nil {
			return false
		}
	}

	if unwrapped := errors.Unwrap(e); unwrapped != nil {
		if ue, ok := unwrapped.(*Error); ok {
			return ue.Is(target)
		}
	}

	return false
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if targetErr, ok := target.(**Error); ok {
		*targetErr = e
		return true
	}

	if e.Data != nil {
		if data, ok := e.Data.(error); ok {
			return errors.As(data, target)
		}
	}

	if e.WrappedErr != nil {
		if reflect.ValueOf(e.WrappedErr).Kind() == reflect.Ptr && reflect.ValueOf(e.WrappedErr).IsNil() {
			return false
		}
		return errors.As(e.WrappedErr, target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.WrappedErr
}

// New builds an Error, formatting message with params. If the last param is
// an error (or *Error), it becomes WrappedErr and is excluded from the
// Sprintf arguments.
func New(code ERR, message string, params ...interface{}) *Error {
	var wErr error

	if len(params) > 0 {
		lastParam := params[len(params)-1]
		if err, ok := lastParam.(error); ok {
			wErr = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{
		Code:       code,
		Message:    message,
		WrappedErr: wErr,
	}
}

// Is is a package-level convenience mirroring errors.Is from the standard
// library, so callers don't need to import both packages under different
// names.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Wrap(code ERR, wrapped error, message string, params ...interface{}) *Error {
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	return &Error{Code: code, Message: message, WrappedErr: wrapped}
}

// Convenience constructors mirroring the teacher's errors.NewXxxError style.
func NewInvalidArgumentError(message string, params ...interface{}) *Error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}

func NewNotFoundError(message string, params ...interface{}) *Error {
	return New(ERR_NOT_FOUND, message, params...)
}

func NewStorageError(message string, params ...interface{}) *Error {
	return New(ERR_STORAGE, message, params...)
}

func NewConfigurationError(message string, params ...interface{}) *Error {
	return New(ERR_CONFIGURATION, message, params...)
}

func NewProcessingError(message string, params ...interface{}) *Error {
	return New(ERR_PROCESSING, message, params...)
}

func NewServiceError(message string, params ...interface{}) *Error {
	return New(ERR_SERVICE, message, params...)
}

func NewStateError(message string, params ...interface{}) *Error {
	return New(ERR_STATE, message, params...)
}

// NewCorruptDataError marks a failure as fatal database corruption, per
// spec.md §7's propagation policy: the caller is expected to translate this
// into a process exit or an operator-triggered rebuild-from-chain.
func NewCorruptDataError(message string, params ...interface{}) *Error {
	return New(ERR_CORRUPT_DATA, message, params...)
}

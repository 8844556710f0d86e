package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound               ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput           ErrorType = "INVALID_INPUT"
	ErrTypeDuplicateKey           ErrorType = "DUPLICATE_KEY"
	ErrTypeInvalidStateTransition ErrorType = "INVALID_STATE_TRANSITION"
	ErrTypeInternal               ErrorType = "INTERNAL"
	ErrTypeUnavailable            ErrorType = "UNAVAILABLE"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func DuplicateKey(message string, err error) *DomainError {
	return New(ErrTypeDuplicateKey, message, err)
}

func InvalidStateTransition(message string, err error) *DomainError {
	return New(ErrTypeInvalidStateTransition, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// TypeOf reports the type of the outermost DomainError in err's chain, or
// ErrTypeInternal for errors that carry no domain classification.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeNotFound
}

func IsInvalidInput(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeInvalidInput
}

func IsDuplicateKey(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeDuplicateKey
}

func IsInvalidStateTransition(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeInvalidStateTransition
}

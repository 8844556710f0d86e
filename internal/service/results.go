package service

import (
	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/models"
)

// AppResult is the outcome of a command. Success is authoritative; Message is
// always set and Errors carries extra detail on failure. Type classifies a
// failure for transports and is empty on success.
type AppResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors"`
	ID      string           `json:"id,omitempty"`
	Type    errors.ErrorType `json:"-"`
}

type GetDocumentResult struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message"`
	Errors   []string                `json:"errors"`
	Document *models.UserOpportunity `json:"document,omitempty"`
	Type     errors.ErrorType        `json:"-"`
}

func succeeded(message, id string) AppResult {
	return AppResult{Success: true, Message: message, Errors: []string{}, ID: id}
}

// failed classifies by err, treating a bare rejection as INVALID_INPUT.
func failed(message string, err error) AppResult {
	if err == nil {
		return failedAs(errors.ErrTypeInvalidInput, message, nil)
	}
	return failedAs(errors.TypeOf(err), message, err)
}

func failedAs(t errors.ErrorType, message string, err error) AppResult {
	r := AppResult{Message: message, Errors: []string{}, Type: t}
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

func notFound(id string, err error) AppResult {
	return failedAs(errors.ErrTypeNotFound, notFoundMessage(id), err)
}

func documentFailed(r AppResult) GetDocumentResult {
	return GetDocumentResult{Message: r.Message, Errors: r.Errors, Type: r.Type}
}

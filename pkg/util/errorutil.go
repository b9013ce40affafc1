package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Wire error codes. The numeric values are a compatibility contract with
// existing clients and must not change.
const (
	CodeSuccess          = 0
	CodeInternal         = 1
	CodeUnauthenticated  = 2
	CodeInvalidUsername  = 104
	CodeInvalidInvite    = 108
	CodeTeamNameConflict = 301
	CodeTeamNotFound     = 302
	CodePermissionDenied = 305
)

// StatusError is the application error carried from services to the HTTP
// layer. Code and Message are serialized verbatim into the failure envelope.
type StatusError struct {
	Code       int
	Message    string
	HTTPStatus int
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError constructs a StatusError.
func NewStatusError(code int, message string, status int) *StatusError {
	return &StatusError{Code: code, Message: message, HTTPStatus: status}
}

func NewInvalidUsername() error {
	return NewStatusError(CodeInvalidUsername, "Invalid username.", http.StatusBadRequest)
}

func NewSessionMissing() error {
	return NewStatusError(CodeUnauthenticated, "User status error.", http.StatusUnauthorized)
}

func NewInvalidInviteName() error {
	return NewStatusError(CodeInvalidInvite, "Invalid inviteName", http.StatusBadRequest)
}

func NewInviteeNotFound() error {
	return NewStatusError(CodeInvalidInvite, "Username or inviteName not exists.", http.StatusNotFound)
}

func NewInvalidTeamID() error {
	return NewStatusError(CodeTeamNotFound, "Invalid teamId.", http.StatusNotFound)
}

func NewTeamNotExist() error {
	return NewStatusError(CodeTeamNotFound, "Team not exist.", http.StatusNotFound)
}

func NewTeamNameExists() error {
	return NewStatusError(CodeTeamNameConflict, "TeamName already exists.", http.StatusConflict)
}

// NewPermissionDenied keeps the trailing space in the message; clients
// match on the exact string.
func NewPermissionDenied() error {
	return NewStatusError(CodePermissionDenied, "Permission error ", http.StatusForbidden)
}

func NewInternalError(err error) error {
	return &StatusError{
		Code:       CodeInternal,
		Message:    "Unexpected error.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToStatusError converts generic errors to StatusError, collapsing anything
// unrecognized to the internal code so storage details never leak.
func ToStatusError(err error) *StatusError {
	if err == nil {
		return nil
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}
	return &StatusError{
		Code:       CodeInternal,
		Message:    "Unexpected error.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Package apperror defines the single error type returned by the services.
// Every error carries the name/message/details triple that ends up in the
// JSON envelope, and a Kind that decides the HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates every named error the API can return.
type Kind int

const (
	KindJSONWebToken Kind = iota
	KindTokenExpired
	KindInsufficientAccess
	KindEmailNotRegistered
	KindWrongPassword
	KindEmailAlreadyTaken
	KindRecordNotFound
	KindCarAlreadyRented
	KindValidation
	KindUnprocessable
)

// Error is a domain error with a fixed {name, message, details} shape.
type Error struct {
	Kind    Kind
	Name    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Status maps the error kind to the HTTP status code used at the boundary.
func (e *Error) Status() int {
	switch e.Kind {
	case KindJSONWebToken, KindTokenExpired, KindInsufficientAccess, KindWrongPassword:
		return http.StatusUnauthorized
	case KindEmailNotRegistered, KindRecordNotFound:
		return http.StatusNotFound
	case KindEmailAlreadyTaken, KindCarAlreadyRented, KindValidation, KindUnprocessable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Body is the JSON envelope for the error.
type Body struct {
	Error Detail `json:"error"`
}

// Detail is the inner part of Body.
type Detail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// Envelope returns the error wrapped in the response envelope.
func (e *Error) Envelope() Body {
	return Body{Error: Detail{Name: e.Name, Message: e.Message, Details: e.Details}}
}

// As reports whether err (or anything it wraps) is an *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// NewJSONWebToken is a token format or signature failure. The message is one
// of the literal verification messages (e.g. "jwt malformed").
func NewJSONWebToken(message string) *Error {
	return &Error{Kind: KindJSONWebToken, Name: "JsonWebTokenError", Message: message}
}

func NewTokenExpired(expiredAt any) *Error {
	return &Error{
		Kind:    KindTokenExpired,
		Name:    "TokenExpiredError",
		Message: "jwt expired",
		Details: map[string]any{"expiredAt": expiredAt},
	}
}

// NewInsufficientAccess is returned when the token role differs from the
// role required by the route.
func NewInsufficientAccess(requiredRole, actualRole string) *Error {
	return &Error{
		Kind:    KindInsufficientAccess,
		Name:    "InsufficientAccessError",
		Message: "Access forbidden!",
		Details: map[string]any{
			"role":   requiredRole,
			"reason": fmt.Sprintf("%s is not allowed to perform this operation.", actualRole),
		},
	}
}

func NewEmailNotRegistered(email string) *Error {
	return &Error{
		Kind:    KindEmailNotRegistered,
		Name:    "EmailNotRegisteredError",
		Message: fmt.Sprintf("%s is not registered!", email),
		Details: map[string]any{"email": email},
	}
}

func NewWrongPassword() *Error {
	return &Error{Kind: KindWrongPassword, Name: "WrongPasswordError", Message: "Password is not correct!"}
}

func NewEmailAlreadyTaken(email string) *Error {
	return &Error{
		Kind:    KindEmailAlreadyTaken,
		Name:    "EmailAlreadyTakenError",
		Message: fmt.Sprintf("%s is already taken!!!", email),
		Details: map[string]any{"email": email},
	}
}

// NewRecordNotFound names the entity ("User", "Role", "Car") that was missing.
func NewRecordNotFound(entity string) *Error {
	return &Error{
		Kind:    KindRecordNotFound,
		Name:    "RecordNotFoundError",
		Message: fmt.Sprintf("%s not found!", entity),
		Details: map[string]any{"entity": entity},
	}
}

// NewCarAlreadyRented names the car that already has a reservation in the
// requested window.
func NewCarAlreadyRented(carName string, car any) *Error {
	return &Error{
		Kind:    KindCarAlreadyRented,
		Name:    "CarAlreadyRentedError",
		Message: fmt.Sprintf("%s is already rented!!", carName),
		Details: map[string]any{"car": car},
	}
}

// NewValidation carries per-field messages in Details.
func NewValidation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Name:    "ValidationError",
		Message: "Validation failed",
		Details: fields,
	}
}

// NewUnprocessable turns any failure of a write operation into a 422 with a
// generic name and message. Names of wrapped *Error values are kept.
func NewUnprocessable(err error) *Error {
	if appErr, ok := As(err); ok {
		return &Error{Kind: KindUnprocessable, Name: appErr.Name, Message: appErr.Message}
	}
	return &Error{Kind: KindUnprocessable, Name: "Error", Message: err.Error()}
}

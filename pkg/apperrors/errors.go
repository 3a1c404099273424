package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidAction      = errors.New("invalid action")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrIDExhausted        = errors.New("book identifier space exhausted")
)

// StatusViolationError reports a circulation request that is illegal for the
// book's current status. The message names the current status so callers can
// surface it verbatim.
type StatusViolationError struct {
	BookID        string
	CurrentStatus string
	Action        string
}

func (e *StatusViolationError) Error() string {
	switch e.Action {
	case "borrow":
		return fmt.Sprintf("book %s is currently %s and cannot be borrowed", e.BookID, e.CurrentStatus)
	case "return":
		return fmt.Sprintf("book %s is currently %s and cannot be returned", e.BookID, e.CurrentStatus)
	default:
		return fmt.Sprintf("book %s is currently %s; action %s is not allowed", e.BookID, e.CurrentStatus, e.Action)
	}
}

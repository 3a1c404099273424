package models

import "time"

// Circulation actions.
const (
	ActionBorrow = "borrow"
	ActionReturn = "return"
)

// IsValidAction checks if the given action is valid.
func IsValidAction(action string) bool {
	return action == ActionBorrow || action == ActionReturn
}

// Transaction is one circulation event. The transactions table is append-only:
// rows are written when a request is accepted and never updated.
type Transaction struct {
	TransactionID   int64     `json:"transaction_id"`
	BookID          string    `json:"book_id"`
	TeacherID       int64     `json:"teacher_id"`
	Action          string    `json:"action"`
	TransactionDate time.Time `json:"transaction_date"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CirculationRequest is a borrow or return submission. TransactionDate
// defaults to today when omitted; it records when the physical handover
// happened, not when the row was written.
type CirculationRequest struct {
	BookID          string     `json:"book_id"`
	TeacherID       int64      `json:"teacher_id"`
	Action          string     `json:"action"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	BookID    string
	TeacherID *int64
	Action    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

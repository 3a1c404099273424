// Package models contains domain types for librarian.
package models

import "time"

// Book statuses. A book's status changes only through circulation requests
// or an explicit administrative update.
const (
	StatusAvailable = "Available"
	StatusOnLoan    = "On Loan"
	StatusLost      = "Lost"
	StatusArchived  = "Archived"
)

// ValidStatuses contains all valid book status values.
var ValidStatuses = []string{StatusAvailable, StatusOnLoan, StatusLost, StatusArchived}

// IsValidStatus checks if the given status is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Book represents a physical book in the inventory. BookID is the public
// identifier (e.g. "DON-001"), either supplied by the source system or
// generated per category at load time.
type Book struct {
	BookID            string    `json:"book_id"`
	Name              string    `json:"name"`
	CategoryID        *int64    `json:"category_id,omitempty"`
	StorageLocationID *int64    `json:"storage_location_id,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Joined dimension attributes, populated by list/get queries.
	CategoryLabel *string `json:"category_label,omitempty"`
	LocationName  *string `json:"location_name,omitempty"`
}

// CanBorrow reports whether a borrow request is legal for the current status.
func (b *Book) CanBorrow() bool {
	return b.Status == StatusAvailable
}

// CanReturn reports whether a return request is legal for the current status.
func (b *Book) CanReturn() bool {
	return b.Status == StatusOnLoan
}

// BookUpdate enumerates the fields an update may change. Nil fields are left
// untouched. There is no reflection-driven patching; anything not listed here
// cannot be updated through the API.
type BookUpdate struct {
	Name              *string `json:"name,omitempty"`
	CategoryID        *int64  `json:"category_id,omitempty"`
	StorageLocationID *int64  `json:"storage_location_id,omitempty"`
	Status            *string `json:"status,omitempty"`
}

// BookFilter narrows book listings.
type BookFilter struct {
	Status     string
	CategoryID *int64
	Limit      int
	Offset     int
}

// CategoryCount is a per-category book tally.
type CategoryCount struct {
	CategoryID    int64  `json:"category_id"`
	CategoryName  string `json:"category_name"`
	CategoryLabel string `json:"category_label"`
	Count         int    `json:"count"`
}

// BookStats summarizes the inventory for the stats endpoint.
type BookStats struct {
	Total      int             `json:"total"`
	Available  int             `json:"available"`
	OnLoan     int             `json:"on_loan"`
	Lost       int             `json:"lost"`
	Archived   int             `json:"archived"`
	Categories []CategoryCount `json:"categories"`
}

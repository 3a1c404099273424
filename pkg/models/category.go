package models

import "time"

// Category is a book classification dimension. CategoryLabel is the short
// natural key used in source files and in generated book identifiers;
// CategoryName is the display name.
type Category struct {
	CategoryID    int64     `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	CategoryLabel string    `json:"category_label"`
	CreatedAt     time.Time `json:"created_at"`
}

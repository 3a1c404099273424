package models

import "time"

// Location is a physical storage place. LocationName is the natural key and
// is unique across the whole inventory. CategoryLabel is informational only;
// a location may shelve books from several categories.
type Location struct {
	LocationID    int64     `json:"location_id"`
	LocationName  string    `json:"location_name"`
	CategoryLabel *string   `json:"category_label,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

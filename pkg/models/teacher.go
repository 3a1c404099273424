package models

import "time"

// Teacher is a borrower. Deleting a teacher cascades to their transactions.
type Teacher struct {
	TeacherID int64     `json:"teacher_id"`
	Name      string    `json:"name"`
	Classroom *string   `json:"classroom,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TeacherUpdate enumerates the fields an update may change.
type TeacherUpdate struct {
	Name      *string `json:"name,omitempty"`
	Classroom *string `json:"classroom,omitempty"`
}

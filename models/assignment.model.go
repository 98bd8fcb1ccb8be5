package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment represents coursework with a deadline. InstructorID is a
// snapshot of the course's instructor taken at creation time; grading
// rights check against this field, never against the live course row.
type Assignment struct {
	gorm.Model
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	InstructorID uint      `json:"instructor_id" gorm:"not null"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      time.Time `json:"due_date" gorm:"not null"`
	MaxMarks     float64   `json:"max_marks" gorm:"default:100"`
	IsDeleted    bool      `gorm:"default:false" json:"-"`
}

// AcceptingSubmissions reports whether a new submission may be created
// at the given instant. Past-due submissions are rejected outright; the
// system never accepts work after the deadline.
func (a Assignment) AcceptingSubmissions(now time.Time) bool {
	return !now.After(a.DueDate)
}

// SubmissionStatusAt derives the status recorded for a submission
// persisted at the given instant. The create guard already blocked
// past-due requests, so "late" only occurs when the deadline ticked
// over between the guard and the final write (attachment uploads may
// straddle the deadline).
func (a Assignment) SubmissionStatusAt(persistedAt time.Time) string {
	if persistedAt.After(a.DueDate) {
		return SubmissionStatusLate
	}
	return SubmissionStatusSubmitted
}

package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission statuses
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusLate      = "late"
	SubmissionStatusGraded    = "graded"
)

// Attachment is one uploaded file attached to a submission
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// Submission is a student's answer to an assignment. The composite
// unique index enforces at most one submission per (assignment, student)
// at the database, which holds under concurrent inserts.
type Submission struct {
	gorm.Model
	AssignmentID uint           `json:"assignment_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student"`
	StudentID    uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student"`
	Content      string         `json:"content" gorm:"type:text;not null"`
	Attachments  datatypes.JSON `json:"attachments"`
	Status       string         `json:"status" gorm:"default:'submitted'"` // submitted, late, graded
	Marks        *float64       `json:"marks"`
	Feedback     string         `json:"feedback" gorm:"type:text"`
}

// SetAttachments stores the attachment list as a JSON column value.
func (s *Submission) SetAttachments(attachments []Attachment) error {
	if attachments == nil {
		attachments = []Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return err
	}
	s.Attachments = datatypes.JSON(raw)
	return nil
}

// AttachmentList decodes the stored attachment JSON.
func (s Submission) AttachmentList() []Attachment {
	var attachments []Attachment
	if len(s.Attachments) == 0 {
		return attachments
	}
	_ = json.Unmarshal(s.Attachments, &attachments)
	return attachments
}

// GradedSubmission pairs a submission with the resolved student identity
// for instructor-facing listings.
type GradedSubmission struct {
	Submission
	Student PublicUser `json:"student"`
}

package model

import (
	"time"
)

// SubmissionStatus is the grading state of a submission.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusPassed    SubmissionStatus = "passed"
	SubmissionStatusFailed    SubmissionStatus = "failed"
)

// Valid reports whether s is one of the allowed status values.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusPassed, SubmissionStatusFailed:
		return true
	}
	return false
}

// Assignment is a gradable task scoped to one course, authored by one professor.
type Assignment struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null" json:"name"`
	URL         string    `gorm:"type:varchar(255)" json:"url,omitempty"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Attachment  string    `gorm:"type:varchar(255)" json:"attachment,omitempty"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	Notes       string    `gorm:"type:varchar(255)" json:"notes,omitempty"`
	CourseID    string    `gorm:"type:uuid;not null;index" json:"course_id"`
	ProfessorID string    `gorm:"type:uuid;not null;index" json:"professor_id"`

	// Relationships
	Course      Course       `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Professor   Professor    `gorm:"foreignKey:ProfessorID" json:"professor,omitempty"`
	Submissions []Submission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

// Submission is a student's uploaded response to an assignment. A submission
// always carries a stored file URL; there is no URL-less "intent to submit".
// Uniqueness per (assignment, student) is enforced by lookup-before-insert in
// the service layer, not by a database constraint.
type Submission struct {
	ID           string           `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Status       SubmissionStatus `gorm:"type:varchar(20);default:'submitted';not null" json:"status"`
	Submission   string           `gorm:"type:varchar(255);not null" json:"submission"`
	AssignmentID string           `gorm:"type:uuid;not null;index" json:"assignment_id"`
	StudentID    string           `gorm:"type:uuid;not null;index" json:"student_id"`

	// Relationships
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Student    Student    `gorm:"foreignKey:StudentID" json:"-"`
	Feedback   *Feedback  `gorm:"foreignKey:SubmissionID" json:"feedback,omitempty"`
}

// Feedback is an optional professor-authored note attached to a submission.
// A feedback row only exists while its text is non-empty; clearing the text
// deletes the row instead of storing an empty string.
type Feedback struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Description  string `gorm:"type:varchar(255);not null" json:"description"`
	SubmissionID string `gorm:"type:uuid;not null;index" json:"submission_id"`

	Submission Submission `gorm:"foreignKey:SubmissionID" json:"-"`
}

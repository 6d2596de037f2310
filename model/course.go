package model

import (
	"time"
)

// Course represents a teachable unit with enrolled professors and students.
type Course struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null" json:"name"`

	// Relationships
	Assignments []Assignment      `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Professors  []CourseProfessor `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Students    []CourseStudent   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseProfessor maps a professor to a course. The composite primary key
// prevents duplicate membership rows.
type CourseProfessor struct {
	ProfessorID string `gorm:"type:uuid;primaryKey" json:"professor_id"`
	CourseID    string `gorm:"type:uuid;primaryKey" json:"course_id"`

	// Relationships
	Professor Professor `gorm:"foreignKey:ProfessorID" json:"-"`
	Course    Course    `gorm:"foreignKey:CourseID" json:"-"`
}

func (CourseProfessor) TableName() string { return "course_professors" }

// CourseStudent maps a student to a course.
type CourseStudent struct {
	StudentID string `gorm:"type:uuid;primaryKey" json:"student_id"`
	CourseID  string `gorm:"type:uuid;primaryKey" json:"course_id"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID" json:"-"`
	Course  Course  `gorm:"foreignKey:CourseID" json:"-"`
}

func (CourseStudent) TableName() string { return "course_students" }

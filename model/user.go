package model

import (
	"time"
)

// Role values carried in session claims and stored on user rows.
// Professors and students live in disjoint tables; each row carries its
// own literal role value rather than referencing a shared users table.
const (
	RoleStudent    = "student"
	RoleProfessor  = "professor"
	RoleManager    = "manager"
	RoleSuperadmin = "superadmin"
)

// Professor represents a teaching user.
type Professor struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);default:'professor'" json:"role"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`

	// Relationships
	Courses     []CourseProfessor `gorm:"foreignKey:ProfessorID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment      `gorm:"foreignKey:ProfessorID" json:"-"`
}

// Student represents an enrolled user.
type Student struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);default:'student'" json:"role"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`

	// Relationships
	Courses     []CourseStudent `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Submissions []Submission    `gorm:"foreignKey:StudentID" json:"-"`
}

// FullName joins first and last name for display.
func (p Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/utils/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedSuperadmin(); err != nil {
		return fmt.Errorf("failed to seed superadmin: %w", err)
	}

	if err := s.SeedDemoUsers(); err != nil {
		return fmt.Errorf("failed to seed demo users: %w", err)
	}

	if err := s.SeedDemoCourse(); err != nil {
		return fmt.Errorf("failed to seed demo course: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedSuperadmin creates the default superadmin account from environment
// variables. Superadmins live in the professors table.
func (s *Seeder) SeedSuperadmin() error {
	var count int64
	if err := s.db.Model(&model.Professor{}).Where("role = ?", model.RoleSuperadmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Superadmin already exists, skipping...")
		return nil
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminEmail := os.Getenv("ADMIN_EMAIL")

	if adminUsername == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_USERNAME and ADMIN_PASSWORD environment variables not set, skipping superadmin creation")
		return nil
	}
	if adminEmail == "" {
		adminEmail = adminUsername + "@example.edu"
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Professor{
		ID:           uuid.New().String(),
		Username:     adminUsername,
		PasswordHash: passwordHash,
		Role:         model.RoleSuperadmin,
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        adminEmail,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Superadmin %q created", adminUsername)
	return nil
}

// SeedDemoUsers creates a demo professor and three demo students when the
// tables are empty. Intended for development environments only.
func (s *Seeder) SeedDemoUsers() error {
	if os.Getenv("GO_ENV") == "production" {
		log.Println("⏭️  Production environment, skipping demo users...")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Students already exist, skipping demo users...")
		return nil
	}

	passwordHash, err := auth.HashPassword("changeme123")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	professor := model.Professor{
		ID:           uuid.New().String(),
		Username:     "prof.rivera",
		PasswordHash: passwordHash,
		Role:         model.RoleProfessor,
		FirstName:    "Ana",
		LastName:     "Rivera",
		Email:        "ana.rivera@example.edu",
	}
	if err := s.db.Create(&professor).Error; err != nil {
		return err
	}

	students := []model.Student{
		{ID: uuid.New().String(), Username: "m.okafor", PasswordHash: passwordHash, Role: model.RoleStudent, FirstName: "Maya", LastName: "Okafor", Email: "maya.okafor@example.edu"},
		{ID: uuid.New().String(), Username: "l.petrov", PasswordHash: passwordHash, Role: model.RoleStudent, FirstName: "Lev", LastName: "Petrov", Email: "lev.petrov@example.edu"},
		{ID: uuid.New().String(), Username: "s.tanaka", PasswordHash: passwordHash, Role: model.RoleStudent, FirstName: "Sora", LastName: "Tanaka", Email: "sora.tanaka@example.edu"},
	}
	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Println("✅ Demo professor and students created (password: changeme123)")
	return nil
}

// SeedDemoCourse creates one demo course with the demo users enrolled and
// a first assignment due in two weeks.
func (s *Seeder) SeedDemoCourse() error {
	if os.Getenv("GO_ENV") == "production" {
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping demo course...")
		return nil
	}

	var professor model.Professor
	if err := s.db.Where("role = ?", model.RoleProfessor).First(&professor).Error; err != nil {
		log.Println("⏭️  No professor found, skipping demo course...")
		return nil
	}

	var students []model.Student
	if err := s.db.Find(&students).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		course := model.Course{
			ID:   uuid.New().String(),
			Name: "Introduction to Databases",
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}

		if err := tx.Create(&model.CourseProfessor{ProfessorID: professor.ID, CourseID: course.ID}).Error; err != nil {
			return err
		}

		for _, st := range students {
			if err := tx.Create(&model.CourseStudent{StudentID: st.ID, CourseID: course.ID}).Error; err != nil {
				return err
			}
		}

		assignment := model.Assignment{
			ID:          uuid.New().String(),
			Name:        "ER Modeling Exercise",
			DueDate:     time.Now().AddDate(0, 0, 14),
			Description: "Model the provided retail scenario as an ER diagram.",
			CourseID:    course.ID,
			ProfessorID: professor.ID,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		log.Printf("✅ Demo course %q created with %d students", course.Name, len(students))
		return nil
	})
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}

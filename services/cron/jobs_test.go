package cron

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/coursedeck/coursedeck/database"
	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/utils/auth"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReferencedByURL(t *testing.T) {
	urls := map[string]struct{}{
		"https://files.test/storage/v1/object/public/bucket/a1/file.pdf": {},
		"https://files.test/storage/v1/object/public/bucket/b2/code.py":  {},
	}

	if !referencedByURL(urls, "a1/file.pdf") {
		t.Error("referenced key reported as orphaned")
	}
	if referencedByURL(urls, "c3/ghost.txt") {
		t.Error("orphaned key reported as referenced")
	}
}

// fakeSweeper serves a fixed key listing and records deletes.
type fakeSweeper struct {
	keys    []string
	deleted []string
}

func (f *fakeSweeper) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return f.keys, nil
}

func (f *fakeSweeper) DeleteKey(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestSweepKeepsReferencedFiles(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test. Set TEST_DATABASE_URL to run against Postgres.")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	suffix := uuid.New().String()[:8]
	prof := model.Professor{
		ID: uuid.New().String(), Username: "prof-" + suffix, PasswordHash: "x",
		Role: model.RoleProfessor, FirstName: "T", LastName: "P", Email: "prof-" + suffix + "@test.edu",
	}
	student := model.Student{
		ID: uuid.New().String(), Username: "student-" + suffix, PasswordHash: "x",
		Role: model.RoleStudent, FirstName: "T", LastName: "S", Email: "student-" + suffix + "@test.edu",
	}
	course := model.Course{ID: uuid.New().String(), Name: "Sweep " + suffix}
	for _, row := range []interface{}{&prof, &student, &course} {
		if err := db.Create(row).Error; err != nil {
			t.Fatal(err)
		}
	}

	base := "https://files.test/storage/v1/object/public/assignment-submissions/"
	attachmentKey := "attachments/" + suffix + "-brief.pdf"
	submissionKey := "sub/" + suffix + "-answer.pdf"
	orphanKey := "orphan/" + suffix + "-ghost.bin"

	assignment := model.Assignment{
		ID: uuid.New().String(), Name: "Task", DueDate: time.Now().Add(24 * time.Hour),
		Attachment: base + attachmentKey, CourseID: course.ID, ProfessorID: prof.ID,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatal(err)
	}
	submission := model.Submission{
		ID: uuid.New().String(), Status: model.SubmissionStatusSubmitted,
		Submission: base + submissionKey, AssignmentID: assignment.ID, StudentID: student.ID,
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatal(err)
	}

	store := &fakeSweeper{keys: []string{attachmentKey, submissionKey, orphanKey}}
	manager := NewCronManager(db, auth.NewBlacklistService(db), store)
	manager.SweepOrphanedAttachments()

	// Assignment attachments and submission files are live; only the
	// unreferenced key may go.
	if len(store.deleted) != 1 || store.deleted[0] != orphanKey {
		t.Fatalf("deleted %v, want only %q", store.deleted, orphanKey)
	}
}

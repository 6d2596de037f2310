package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coursedeck/coursedeck/database"
	"github.com/coursedeck/coursedeck/model"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStore records uploads and deletes in memory.
type fakeStore struct {
	uploads int
	deleted []string
}

func (f *fakeStore) Upload(ctx context.Context, folder, filename string, data io.Reader) (string, error) {
	f.uploads++
	io.Copy(io.Discard, data)
	return fmt.Sprintf("https://files.test/storage/v1/object/public/test-bucket/%s/%d-%s", folder, f.uploads, filename), nil
}

func (f *fakeStore) Delete(ctx context.Context, publicURL string) error {
	f.deleted = append(f.deleted, publicURL)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	return db
}

func createProfessor(t *testing.T, db *gorm.DB) model.Professor {
	t.Helper()
	suffix := uuid.New().String()[:8]
	p := model.Professor{
		ID:           uuid.New().String(),
		Username:     "prof-" + suffix,
		PasswordHash: "x",
		Role:         model.RoleProfessor,
		FirstName:    "Test",
		LastName:     "Professor",
		Email:        "prof-" + suffix + "@test.edu",
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func createStudent(t *testing.T, db *gorm.DB) model.Student {
	t.Helper()
	suffix := uuid.New().String()[:8]
	s := model.Student{
		ID:           uuid.New().String(),
		Username:     "student-" + suffix,
		PasswordHash: "x",
		Role:         model.RoleStudent,
		FirstName:    "Test",
		LastName:     "Student",
		Email:        "student-" + suffix + "@test.edu",
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatal(err)
	}
	return s
}

func TestUpsertCourseReplacesMembership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	ctx := context.Background()

	prof := createProfessor(t, db)
	st1 := createStudent(t, db)
	st2 := createStudent(t, db)
	st3 := createStudent(t, db)

	course, err := svc.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Operating Systems",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{st1.ID, st2.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Update replaces the whole student list, dropping st1/st2.
	_, err = svc.UpsertCourse(ctx, UpsertCourseInput{
		ID:           &course.ID,
		Name:         "Operating Systems II",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{st3.ID},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var enrollments []model.CourseStudent
	if err := db.Where("course_id = ?", course.ID).Find(&enrollments).Error; err != nil {
		t.Fatal(err)
	}
	if len(enrollments) != 1 || enrollments[0].StudentID != st3.ID {
		t.Fatalf("membership not replaced: %+v", enrollments)
	}

	updated, err := svc.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Operating Systems II" {
		t.Errorf("name = %q, want Operating Systems II", updated.Name)
	}
}

func TestUpsertCourseEmptyStudentList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	ctx := context.Background()

	prof := createProfessor(t, db)

	course, err := svc.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Seminar",
		ProfessorIDs: []string{prof.ID},
	})
	if err != nil {
		t.Fatalf("create with no students: %v", err)
	}

	rosters, err := svc.RosterByProfessor(ctx, prof.ID)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, r := range rosters {
		if r.Course.ID == course.ID {
			found = true
			if r.Students == nil || len(r.Students) != 0 {
				t.Errorf("expected empty student slice, got %+v", r.Students)
			}
		}
	}
	if !found {
		t.Error("created course missing from roster")
	}
}

func TestSubmitAssignmentReplacesFile(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}
	courses := NewCourseService(db)
	assignments := NewAssignmentService(db)
	submissions := NewSubmissionService(db, store)
	ctx := context.Background()

	prof := createProfessor(t, db)
	student := createStudent(t, db)

	course, err := courses.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Compilers",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{student.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	assignment, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Lexer",
		DueDate:     time.Now().Add(72 * time.Hour),
		CourseID:    course.ID,
		ProfessorID: prof.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	first, err := submissions.SubmitAssignment(ctx, student.ID, assignment.ID, "lexer.py", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := submissions.SubmitAssignment(ctx, student.ID, assignment.ID, "lexer.py", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	// Resubmission updates in place rather than creating a second row.
	if second.ID != first.ID {
		t.Errorf("resubmission created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.Submission == first.Submission {
		t.Error("submission URL not replaced")
	}

	var count int64
	db.Model(&model.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("got %d submission rows, want 1", count)
	}

	// The replaced file must be deleted from storage.
	if len(store.deleted) != 1 || store.deleted[0] != first.Submission {
		t.Errorf("replaced file not deleted: %v", store.deleted)
	}
}

func TestGradeSubmissionFeedbackLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}
	courses := NewCourseService(db)
	assignments := NewAssignmentService(db)
	submissions := NewSubmissionService(db, store)
	ctx := context.Background()

	prof := createProfessor(t, db)
	student := createStudent(t, db)

	course, err := courses.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Algorithms",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{student.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	assignment, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Sorting",
		DueDate:     time.Now().Add(72 * time.Hour),
		CourseID:    course.ID,
		ProfessorID: prof.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	sub, err := submissions.SubmitAssignment(ctx, student.ID, assignment.ID, "sort.py", strings.NewReader("code"))
	if err != nil {
		t.Fatal(err)
	}

	// Grade with feedback: inserts a feedback row.
	graded, err := submissions.GradeSubmission(ctx, sub.ID, model.SubmissionStatusFailed, "Off by one in merge step")
	if err != nil {
		t.Fatal(err)
	}
	if graded.Status != model.SubmissionStatusFailed {
		t.Errorf("status = %q, want failed", graded.Status)
	}
	if graded.Feedback == nil || graded.Feedback.Description != "Off by one in merge step" {
		t.Fatalf("feedback not created: %+v", graded.Feedback)
	}

	// Regrade with new text: updates the same row.
	firstFeedbackID := graded.Feedback.ID
	graded, err = submissions.GradeSubmission(ctx, sub.ID, model.SubmissionStatusPassed, "Fixed, well done")
	if err != nil {
		t.Fatal(err)
	}
	if graded.Feedback == nil || graded.Feedback.ID != firstFeedbackID {
		t.Error("feedback row replaced instead of updated")
	}

	// Regrade with empty text: deletes the row.
	graded, err = submissions.GradeSubmission(ctx, sub.ID, model.SubmissionStatusPassed, "")
	if err != nil {
		t.Fatal(err)
	}
	if graded.Feedback != nil {
		t.Error("feedback not deleted on empty text")
	}

	var fbCount int64
	db.Model(&model.Feedback{}).Where("submission_id = ?", sub.ID).Count(&fbCount)
	if fbCount != 0 {
		t.Errorf("got %d feedback rows, want 0", fbCount)
	}
}

func TestStudentAssignmentsPartition(t *testing.T) {
	db := setupTestDB(t)
	store := &fakeStore{}
	courses := NewCourseService(db)
	assignments := NewAssignmentService(db)
	submissions := NewSubmissionService(db, store)
	ctx := context.Background()

	prof := createProfessor(t, db)
	student := createStudent(t, db)

	course, err := courses.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Networks",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{student.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	open, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Open task",
		DueDate:     time.Now().Add(72 * time.Hour),
		CourseID:    course.ID,
		ProfessorID: prof.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	answered, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Answered task",
		DueDate:     time.Now().Add(96 * time.Hour),
		CourseID:    course.ID,
		ProfessorID: prof.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := submissions.SubmitAssignment(ctx, student.ID, answered.ID, "answer.txt", strings.NewReader("done")); err != nil {
		t.Fatal(err)
	}

	view, err := assignments.StudentAssignmentsByCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatal(err)
	}

	states := make(map[string]AssignmentState)
	for _, sa := range view {
		states[sa.Assignment.ID] = sa.State
	}

	if states[open.ID] != AssignmentDue {
		t.Errorf("open assignment state = %q, want due", states[open.ID])
	}
	// A submission settles the assignment even though its deadline is
	// still in the future.
	if states[answered.ID] != AssignmentPast {
		t.Errorf("answered assignment state = %q, want past", states[answered.ID])
	}
}

func TestStudentAssignmentsRequireEnrollment(t *testing.T) {
	db := setupTestDB(t)
	courses := NewCourseService(db)
	assignments := NewAssignmentService(db)
	ctx := context.Background()

	prof := createProfessor(t, db)
	enrolled := createStudent(t, db)
	outsider := createStudent(t, db)

	course, err := courses.UpsertCourse(ctx, UpsertCourseInput{
		Name:         "Cryptography",
		ProfessorIDs: []string{prof.ID},
		StudentIDs:   []string{enrolled.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Key exchange",
		DueDate:     time.Now().Add(72 * time.Hour),
		CourseID:    course.ID,
		ProfessorID: prof.ID,
	}); err != nil {
		t.Fatal(err)
	}

	view, err := assignments.StudentAssignmentsByCourse(ctx, enrolled.ID, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != 1 {
		t.Errorf("enrolled student: got %d assignments, want 1", len(view))
	}

	// A student outside the course gets an empty view, not the course's
	// assignment list.
	view, err = assignments.StudentAssignmentsByCourse(ctx, outsider.ID, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != 0 {
		t.Errorf("non-enrolled student: got %d assignments, want 0", len(view))
	}
}

func TestUpsertAssignmentRejectsPastDueDate(t *testing.T) {
	db := setupTestDB(t)
	assignments := NewAssignmentService(db)
	ctx := context.Background()

	prof := createProfessor(t, db)

	_, err := assignments.UpsertAssignment(ctx, UpsertAssignmentInput{
		Name:        "Late",
		DueDate:     time.Now().Add(-time.Hour),
		CourseID:    uuid.New().String(),
		ProfessorID: prof.ID,
	})
	if err != ErrDueDateNotFuture {
		t.Errorf("got %v, want ErrDueDateNotFuture", err)
	}
}

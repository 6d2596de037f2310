package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/coursedeck/coursedeck/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDueDateNotFuture rejects assignment creation with a due date that is
// not strictly in the future. Updates are exempt so an overdue assignment
// can still be edited.
var ErrDueDateNotFuture = errors.New("due date must be in the future")

// AssignmentService handles assignment queries for both the professor and
// student views, plus the assignment upsert mutation
type AssignmentService struct {
	db *gorm.DB
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// UpsertAssignmentInput is the assignment create/update request. A nil ID
// means create.
type UpsertAssignmentInput struct {
	ID          *string   `json:"id" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=1,max=255"`
	URL         string    `json:"url" validate:"omitempty,url,max=255"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Attachment  string    `json:"attachment" validate:"omitempty,url,max=255"`
	Description string    `json:"description" validate:"max=255"`
	Notes       string    `json:"notes" validate:"max=255"`
	CourseID    string    `json:"course_id" validate:"required,uuid"`
	ProfessorID string    `json:"professor_id" validate:"required,uuid"`
}

// AssignmentWithSubmissions pairs an assignment with every submission made
// against it. Assignments nobody has answered carry an empty slice.
type AssignmentWithSubmissions struct {
	Assignment  model.Assignment   `json:"assignment"`
	Submissions []model.Submission `json:"submissions"`
}

// AssignmentState partitions a student's view of an assignment.
type AssignmentState string

const (
	// AssignmentDue means the student can still submit: no submission
	// exists and the deadline has not passed.
	AssignmentDue AssignmentState = "due"
	// AssignmentPast means the assignment is settled for this student,
	// either because they submitted or because the deadline passed.
	AssignmentPast AssignmentState = "past"
)

// StudentAssignment is one assignment as a particular student sees it.
// Submission and Feedback are set only when the student has submitted.
type StudentAssignment struct {
	Assignment model.Assignment  `json:"assignment"`
	State      AssignmentState   `json:"state"`
	Submission *model.Submission `json:"submission,omitempty"`
	Feedback   *model.Feedback   `json:"feedback,omitempty"`
}

// StudentSubmissionRow is one line of the professor's grading table: an
// enrolled student together with their submission, if any.
type StudentSubmissionRow struct {
	Student    model.Student     `json:"student"`
	Submission *model.Submission `json:"submission,omitempty"`
	Feedback   *model.Feedback   `json:"feedback,omitempty"`
}

// UpsertAssignment creates or updates an assignment. On create the due
// date must lie strictly in the future. Storage errors surface as generic
// messages; the underlying cause is only logged.
func (s *AssignmentService) UpsertAssignment(ctx context.Context, input UpsertAssignmentInput) (*model.Assignment, error) {
	if input.ID == nil {
		if !input.DueDate.After(time.Now()) {
			return nil, ErrDueDateNotFuture
		}

		assignment := model.Assignment{
			ID:          uuid.New().String(),
			Name:        input.Name,
			URL:         input.URL,
			DueDate:     input.DueDate,
			Attachment:  input.Attachment,
			Description: input.Description,
			Notes:       input.Notes,
			CourseID:    input.CourseID,
			ProfessorID: input.ProfessorID,
		}
		if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
			log.Printf("assignment create failed: %v", err)
			return nil, fmt.Errorf("could not create assignment")
		}
		return &assignment, nil
	}

	var assignment model.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", *input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		log.Printf("assignment fetch failed: %v", err)
		return nil, fmt.Errorf("could not update assignment")
	}

	assignment.Name = input.Name
	assignment.URL = input.URL
	assignment.DueDate = input.DueDate
	// A replaced attachment file is not deleted here; once no assignment
	// row references it, the nightly orphan sweep reclaims it.
	assignment.Attachment = input.Attachment
	assignment.Description = input.Description
	assignment.Notes = input.Notes
	if err := s.db.WithContext(ctx).Save(&assignment).Error; err != nil {
		log.Printf("assignment update failed: %v", err)
		return nil, fmt.Errorf("could not update assignment")
	}
	return &assignment, nil
}

// AssignmentsByCourse returns every assignment of a course with its
// submissions attached: the professor's course overview. Submissions are
// fetched in a second query over the assignment-id set and grouped here
// rather than via per-assignment queries.
func (s *AssignmentService) AssignmentsByCourse(ctx context.Context, courseID string) ([]AssignmentWithSubmissions, error) {
	var assignments []model.Assignment
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	assignmentIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
	}

	var submissions []model.Submission
	if len(assignmentIDs) > 0 {
		if err := s.db.WithContext(ctx).
			Preload("Feedback").
			Where("assignment_id IN ?", assignmentIDs).
			Find(&submissions).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch submissions: %w", err)
		}
	}

	return groupSubmissions(assignments, submissions), nil
}

// groupSubmissions folds a flat submission list into its per-assignment
// buckets, preserving assignment order.
func groupSubmissions(assignments []model.Assignment, submissions []model.Submission) []AssignmentWithSubmissions {
	byAssignment := make(map[string][]model.Submission)
	for _, sub := range submissions {
		byAssignment[sub.AssignmentID] = append(byAssignment[sub.AssignmentID], sub)
	}

	out := make([]AssignmentWithSubmissions, 0, len(assignments))
	for _, a := range assignments {
		subs := byAssignment[a.ID]
		if subs == nil {
			subs = []model.Submission{}
		}
		out = append(out, AssignmentWithSubmissions{Assignment: a, Submissions: subs})
	}
	return out
}

// classifyAssignment decides a student's state for one assignment. An
// existing submission settles the assignment regardless of the deadline;
// otherwise a past deadline does.
func classifyAssignment(a model.Assignment, sub *model.Submission, now time.Time) AssignmentState {
	if sub != nil || a.DueDate.Before(now) {
		return AssignmentPast
	}
	return AssignmentDue
}

// StudentAssignmentsByCourse returns a course's assignments as one student
// sees them, each tagged due or past. A student not enrolled in the
// course sees nothing.
func (s *AssignmentService) StudentAssignmentsByCourse(ctx context.Context, studentID, courseID string) ([]StudentAssignment, error) {
	var enrolled int64
	if err := s.db.WithContext(ctx).
		Model(&model.CourseStudent{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&enrolled).Error; err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled == 0 {
		return []StudentAssignment{}, nil
	}

	var assignments []model.Assignment
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	assignmentIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
	}

	var submissions []model.Submission
	if len(assignmentIDs) > 0 {
		if err := s.db.WithContext(ctx).
			Preload("Feedback").
			Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).
			Find(&submissions).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch submissions: %w", err)
		}
	}

	subByAssignment := make(map[string]*model.Submission, len(submissions))
	for i := range submissions {
		subByAssignment[submissions[i].AssignmentID] = &submissions[i]
	}

	now := time.Now()
	out := make([]StudentAssignment, 0, len(assignments))
	for _, a := range assignments {
		sub := subByAssignment[a.ID]
		sa := StudentAssignment{
			Assignment: a,
			State:      classifyAssignment(a, sub, now),
			Submission: sub,
		}
		if sub != nil {
			sa.Feedback = sub.Feedback
		}
		out = append(out, sa)
	}
	return out, nil
}

// AssignmentForStudent returns one assignment with the student's
// submission and its feedback, if they exist.
func (s *AssignmentService) AssignmentForStudent(ctx context.Context, studentID, assignmentID string) (*StudentAssignment, error) {
	var assignment model.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	var submission model.Submission
	err := s.db.WithContext(ctx).
		Preload("Feedback").
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	sa := StudentAssignment{Assignment: assignment}
	if err == nil {
		sa.Submission = &submission
		sa.Feedback = submission.Feedback
	}
	sa.State = classifyAssignment(assignment, sa.Submission, time.Now())
	return &sa, nil
}

// AssignmentSubmissions builds the professor's grading table for one
// assignment: every student enrolled in the assignment's course, joined
// with their submission and feedback when present.
func (s *AssignmentService) AssignmentSubmissions(ctx context.Context, assignmentID string) ([]StudentSubmissionRow, error) {
	var assignment model.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	var enrollments []model.CourseStudent
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", assignment.CourseID).
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}

	var submissions []model.Submission
	if err := s.db.WithContext(ctx).
		Preload("Feedback").
		Where("assignment_id = ?", assignmentID).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	students := make([]model.Student, 0, len(enrollments))
	for _, e := range enrollments {
		students = append(students, e.Student)
	}
	return buildGradingTable(students, submissions), nil
}

// buildGradingTable left-joins enrolled students with their submissions.
// Students without a submission still get a row.
func buildGradingTable(students []model.Student, submissions []model.Submission) []StudentSubmissionRow {
	subByStudent := make(map[string]*model.Submission, len(submissions))
	for i := range submissions {
		subByStudent[submissions[i].StudentID] = &submissions[i]
	}

	rows := make([]StudentSubmissionRow, 0, len(students))
	for _, st := range students {
		row := StudentSubmissionRow{Student: st, Submission: subByStudent[st.ID]}
		if row.Submission != nil {
			row.Feedback = row.Submission.Feedback
		}
		rows = append(rows, row)
	}
	return rows
}

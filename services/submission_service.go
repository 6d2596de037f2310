package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/coursedeck/coursedeck/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidStatus rejects grading with a status outside the allowed enum.
var ErrInvalidStatus = errors.New("invalid submission status")

// ObjectStore is the slice of the storage client the submission flow
// needs. Upload returns the stored object's public URL; Delete takes one.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename string, data io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// SubmissionService handles submission intake and grading
type SubmissionService struct {
	db    *gorm.DB
	store ObjectStore
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(db *gorm.DB, store ObjectStore) *SubmissionService {
	return &SubmissionService{db: db, store: store}
}

// SubmitAssignment stores an uploaded file and records it as the student's
// submission for the assignment. Resubmission replaces: the new file is
// uploaded first, the old one deleted, and the existing row updated in
// place so its ID and feedback survive.
func (s *SubmissionService) SubmitAssignment(ctx context.Context, studentID, assignmentID, filename string, data io.Reader) (*model.Submission, error) {
	if s.store == nil {
		return nil, errors.New("object storage is not configured")
	}

	var assignment model.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	var existing model.Submission
	err := s.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	url, uploadErr := s.store.Upload(ctx, assignmentID, filename, data)
	if uploadErr != nil {
		log.Printf("submission upload failed: %v", uploadErr)
		return nil, fmt.Errorf("could not store submission file")
	}

	if err == nil {
		oldURL := existing.Submission
		existing.Submission = url
		existing.Status = model.SubmissionStatusSubmitted
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			// Roll back the orphaned upload; the row still points at
			// the old file.
			if delErr := s.store.Delete(ctx, url); delErr != nil {
				log.Printf("failed to delete orphaned upload %s: %v", url, delErr)
			}
			log.Printf("submission update failed: %v", err)
			return nil, fmt.Errorf("could not update submission")
		}
		if delErr := s.store.Delete(ctx, oldURL); delErr != nil {
			log.Printf("failed to delete replaced file %s: %v", oldURL, delErr)
		}
		return &existing, nil
	}

	submission := model.Submission{
		ID:           uuid.New().String(),
		Status:       model.SubmissionStatusSubmitted,
		Submission:   url,
		AssignmentID: assignmentID,
		StudentID:    studentID,
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		if delErr := s.store.Delete(ctx, url); delErr != nil {
			log.Printf("failed to delete orphaned upload %s: %v", url, delErr)
		}
		log.Printf("submission create failed: %v", err)
		return nil, fmt.Errorf("could not create submission")
	}
	return &submission, nil
}

// CreateSubmission records a submission whose file was already uploaded by
// the caller. Same replace-on-resubmit semantics as SubmitAssignment, but
// no storage side effects beyond dropping the replaced file.
func (s *SubmissionService) CreateSubmission(ctx context.Context, studentID, assignmentID, url string) (*model.Submission, error) {
	var existing model.Submission
	err := s.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	if err == nil {
		oldURL := existing.Submission
		existing.Submission = url
		existing.Status = model.SubmissionStatusSubmitted
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			log.Printf("submission update failed: %v", err)
			return nil, fmt.Errorf("could not update submission")
		}
		if oldURL != url && s.store != nil {
			if delErr := s.store.Delete(ctx, oldURL); delErr != nil {
				log.Printf("failed to delete replaced file %s: %v", oldURL, delErr)
			}
		}
		return &existing, nil
	}

	submission := model.Submission{
		ID:           uuid.New().String(),
		Status:       model.SubmissionStatusSubmitted,
		Submission:   url,
		AssignmentID: assignmentID,
		StudentID:    studentID,
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		log.Printf("submission create failed: %v", err)
		return nil, fmt.Errorf("could not create submission")
	}
	return &submission, nil
}

// feedbackAction names the three ways grading can touch a feedback row.
type feedbackAction int

const (
	feedbackNone feedbackAction = iota
	feedbackInsert
	feedbackUpdate
	feedbackDelete
)

// resolveFeedbackAction keys on (row exists, text non-empty): empty text
// deletes an existing row rather than storing an empty string, and is a
// no-op when no row exists.
func resolveFeedbackAction(exists bool, text string) feedbackAction {
	switch {
	case text == "" && exists:
		return feedbackDelete
	case text == "":
		return feedbackNone
	case exists:
		return feedbackUpdate
	default:
		return feedbackInsert
	}
}

// GradeSubmission sets a submission's status and reconciles its feedback
// row with the given text. The status transition is unconditional; any
// valid status can replace any other.
func (s *SubmissionService) GradeSubmission(ctx context.Context, submissionID string, status model.SubmissionStatus, feedbackText string) (*model.Submission, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var submission model.Submission
	if err := s.db.WithContext(ctx).
		Preload("Feedback").
		First(&submission, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Submission{}).
			Where("id = ?", submissionID).
			Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		switch resolveFeedbackAction(submission.Feedback != nil, feedbackText) {
		case feedbackDelete:
			if err := tx.Delete(&model.Feedback{}, "id = ?", submission.Feedback.ID).Error; err != nil {
				return fmt.Errorf("failed to delete feedback: %w", err)
			}
			submission.Feedback = nil
		case feedbackUpdate:
			submission.Feedback.Description = feedbackText
			if err := tx.Save(submission.Feedback).Error; err != nil {
				return fmt.Errorf("failed to update feedback: %w", err)
			}
		case feedbackInsert:
			fb := model.Feedback{
				ID:           uuid.New().String(),
				Description:  feedbackText,
				SubmissionID: submission.ID,
			}
			if err := tx.Create(&fb).Error; err != nil {
				return fmt.Errorf("failed to create feedback: %w", err)
			}
			submission.Feedback = &fb
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	submission.Status = status
	return &submission, nil
}

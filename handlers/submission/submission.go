package submission

import (
	"errors"
	"log"

	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/services"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/coursedeck/coursedeck/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SubmissionHandler handles submission intake and grading requests
type SubmissionHandler struct {
	submissionService *services.SubmissionService
	validator         *validation.Validator
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		validator:         validation.NewValidator(),
	}
}

// Submit accepts a multipart file upload as the authenticated student's
// submission for an assignment. Resubmitting replaces the stored file.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID := c.Params("id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Submission file is required")
	}

	if fileHeader.Size > validation.MaxAttachmentSize {
		return response.BadRequest(c, "File exceeds the maximum allowed size")
	}
	if !validation.ValidAttachmentType(fileHeader.Filename) {
		return response.BadRequest(c, "File type is not allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	submission, err := h.submissionService.SubmitAssignment(c.Context(), studentID, assignmentID, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		log.Printf("submit assignment failed: %v", err)
		return response.InternalServerError(c, "Failed to submit assignment")
	}
	return response.Created(c, submission)
}

// CreateRequest records a submission whose file was uploaded out of band.
type CreateRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	Submission   string `json:"submission" validate:"required,url,max=255"`
}

// Create records a submission from an already-uploaded file URL.
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	submission, err := h.submissionService.CreateSubmission(c.Context(), studentID, req.AssignmentID, req.Submission)
	if err != nil {
		log.Printf("create submission failed: %v", err)
		return response.InternalServerError(c, "Failed to record submission")
	}
	return response.Created(c, submission)
}

// GradeRequest sets a submission's status and optional feedback text.
// Empty feedback clears any existing feedback.
type GradeRequest struct {
	Status   string `json:"status" validate:"required,oneof=submitted passed failed"`
	Feedback string `json:"feedback"`
}

// Grade sets the status of a submission and reconciles its feedback.
func (h *SubmissionHandler) Grade(c *fiber.Ctx) error {
	submissionID := c.Params("id")
	if _, err := uuid.Parse(submissionID); err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	submission, err := h.submissionService.GradeSubmission(
		c.Context(),
		submissionID,
		model.SubmissionStatus(req.Status),
		validation.SanitizeString(req.Feedback),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubmissionNotFound):
			return response.NotFound(c, "Submission not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid submission status")
		default:
			return response.InternalServerError(c, "Failed to grade submission")
		}
	}
	return response.Success(c, submission)
}

package assignment

import (
	"errors"
	"log"

	"github.com/coursedeck/coursedeck/services"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/coursedeck/coursedeck/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AssignmentHandler handles assignment-related requests
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	validator         *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		validator:         validation.NewValidator(),
	}
}

// UpsertAssignment creates or updates an assignment. The authoring
// professor is taken from the session, not the request body.
func (h *AssignmentHandler) UpsertAssignment(c *fiber.Ctx) error {
	professorID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.UpsertAssignmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.ProfessorID = professorID

	req.Name = validation.SanitizeString(req.Name)
	req.Description = validation.SanitizeString(req.Description)
	req.Notes = validation.SanitizeString(req.Notes)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	assignment, err := h.assignmentService.UpsertAssignment(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDueDateNotFuture):
			return response.BadRequest(c, "Due date must be in the future")
		case errors.Is(err, services.ErrAssignmentNotFound):
			return response.NotFound(c, "Assignment not found")
		default:
			log.Printf("assignment upsert failed: %v", err)
			return response.InternalServerError(c, "Failed to save assignment")
		}
	}

	if req.ID == nil {
		return response.Created(c, assignment)
	}
	return response.Success(c, assignment)
}

// CourseAssignments returns every assignment of a course with its
// submissions: the professor's course overview.
func (h *AssignmentHandler) CourseAssignments(c *fiber.Ctx) error {
	courseID := c.Params("course_id")
	if _, err := uuid.Parse(courseID); err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	assignments, err := h.assignmentService.AssignmentsByCourse(c.Context(), courseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}
	return response.Success(c, assignments)
}

// StudentCourseAssignments returns a course's assignments as the
// authenticated student sees them, tagged due or past.
func (h *AssignmentHandler) StudentCourseAssignments(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID := c.Params("course_id")
	if _, err := uuid.Parse(courseID); err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	assignments, err := h.assignmentService.StudentAssignmentsByCourse(c.Context(), studentID, courseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}
	return response.Success(c, assignments)
}

// StudentAssignment returns one assignment with the authenticated
// student's submission and feedback.
func (h *AssignmentHandler) StudentAssignment(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID := c.Params("id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	assignment, err := h.assignmentService.AssignmentForStudent(c.Context(), studentID, assignmentID)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}
	return response.Success(c, assignment)
}

// AssignmentSubmissions returns the grading table for one assignment:
// every enrolled student with their submission, if any.
func (h *AssignmentHandler) AssignmentSubmissions(c *fiber.Ctx) error {
	assignmentID := c.Params("id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	rows, err := h.assignmentService.AssignmentSubmissions(c.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch submissions")
	}
	return response.Success(c, rows)
}

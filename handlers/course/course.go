package course

import (
	"errors"

	"github.com/coursedeck/coursedeck/services"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/coursedeck/coursedeck/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	courseService *services.CourseService
	validator     *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		validator:     validation.NewValidator(),
	}
}

// MyCourses returns every course the authenticated professor teaches,
// with the enrolled students of each.
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	professorID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	rosters, err := h.courseService.RosterByProfessor(c.Context(), professorID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, rosters)
}

// StudentCourses returns the authenticated student's enrolled courses.
func (h *CourseHandler) StudentCourses(c *fiber.Ctx) error {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courses, err := h.courseService.CoursesByStudent(c.Context(), studentID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, courses)
}

// GetCourse returns a single course by ID.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID := c.Params("id")
	if _, err := uuid.Parse(courseID); err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.courseService.GetCourse(c.Context(), courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}
	return response.Success(c, course)
}

// UpsertCourse creates or updates a course with its membership lists.
func (h *CourseHandler) UpsertCourse(c *fiber.Ctx) error {
	var req services.UpsertCourseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.courseService.UpsertCourse(c.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to save course")
	}

	if req.ID == nil {
		return response.Created(c, course)
	}
	return response.Success(c, course)
}

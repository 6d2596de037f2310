package auth

import (
	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	if role == model.RoleStudent {
		var student model.Student
		if err := h.db.First(&student, "id = ?", userID).Error; err != nil {
			return response.NotFound(c, "User not found")
		}
		return response.Success(c, UserResponse{
			ID:        student.ID,
			Username:  student.Username,
			Role:      student.Role,
			FirstName: student.FirstName,
			LastName:  student.LastName,
			Email:     student.Email,
			CreatedAt: student.CreatedAt,
			UpdatedAt: student.UpdatedAt,
		})
	}

	var professor model.Professor
	if err := h.db.First(&professor, "id = ?", userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, UserResponse{
		ID:        professor.ID,
		Username:  professor.Username,
		Role:      professor.Role,
		FirstName: professor.FirstName,
		LastName:  professor.LastName,
		Email:     professor.Email,
		CreatedAt: professor.CreatedAt,
		UpdatedAt: professor.UpdatedAt,
	})
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if role == model.RoleStudent {
		var student model.Student
		if err := h.db.First(&student, "id = ?", userID).Error; err != nil {
			return response.NotFound(c, "User not found")
		}
		applyProfileUpdate(&student.FirstName, &student.LastName, &student.Email, req)
		if err := h.db.Save(&student).Error; err != nil {
			return response.InternalServerError(c, "Failed to update profile")
		}
		return response.Success(c, UserResponse{
			ID:        student.ID,
			Username:  student.Username,
			Role:      student.Role,
			FirstName: student.FirstName,
			LastName:  student.LastName,
			Email:     student.Email,
			CreatedAt: student.CreatedAt,
			UpdatedAt: student.UpdatedAt,
		})
	}

	var professor model.Professor
	if err := h.db.First(&professor, "id = ?", userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}
	applyProfileUpdate(&professor.FirstName, &professor.LastName, &professor.Email, req)
	if err := h.db.Save(&professor).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}
	return response.Success(c, UserResponse{
		ID:        professor.ID,
		Username:  professor.Username,
		Role:      professor.Role,
		FirstName: professor.FirstName,
		LastName:  professor.LastName,
		Email:     professor.Email,
		CreatedAt: professor.CreatedAt,
		UpdatedAt: professor.UpdatedAt,
	})
}

// applyProfileUpdate copies the provided fields over; blanks leave the
// current value untouched.
func applyProfileUpdate(firstName, lastName, email *string, req UpdateProfileRequest) {
	if req.FirstName != "" {
		*firstName = req.FirstName
	}
	if req.LastName != "" {
		*lastName = req.LastName
	}
	if req.Email != "" {
		*email = req.Email
	}
}

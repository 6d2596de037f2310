package auth

import (
	"errors"
	"time"

	"github.com/coursedeck/coursedeck/model"
	authutil "github.com/coursedeck/coursedeck/utils/auth"
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
	}
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// findAccount looks up a username across the professors and students
// tables. Professors are probed first; usernames are unique per table but
// nothing prevents the same username existing in both, in which case the
// professor row wins.
func (h *AuthHandler) findAccount(username string) (id, role, passwordHash string, user UserResponse, err error) {
	var professor model.Professor
	err = h.db.Where("username = ?", username).First(&professor).Error
	if err == nil {
		return professor.ID, professor.Role, professor.PasswordHash, UserResponse{
			ID:        professor.ID,
			Username:  professor.Username,
			Role:      professor.Role,
			FirstName: professor.FirstName,
			LastName:  professor.LastName,
			Email:     professor.Email,
			CreatedAt: professor.CreatedAt,
			UpdatedAt: professor.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", "", UserResponse{}, err
	}

	var student model.Student
	err = h.db.Where("username = ?", username).First(&student).Error
	if err != nil {
		return "", "", "", UserResponse{}, err
	}
	return student.ID, student.Role, student.PasswordHash, UserResponse{
		ID:        student.ID,
		Username:  student.Username,
		Role:      student.Role,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}, nil
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	ip := c.IP()

	id, role, passwordHash, user, err := h.findAccount(req.Username)
	if err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid username or password")
	}

	// Verify password
	if err := authutil.VerifyPassword(passwordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid username or password")
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(id, req.Username, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(id, req.Username, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Success(c, res)
}

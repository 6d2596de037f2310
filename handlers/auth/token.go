package auth

import (
	"github.com/coursedeck/coursedeck/utils/middleware"
	"github.com/coursedeck/coursedeck/utils/response"
	"github.com/gofiber/fiber/v2"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse represents a token refresh response
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	// Validate refresh token
	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	if claims.TokenType != "refresh" {
		return response.Unauthorized(c, "Invalid token type")
	}

	// Check if token is blacklisted
	isRevoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	newAccessToken, _, err := h.jwtManager.GenerateAccessToken(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	newRefreshToken, _, err := h.jwtManager.GenerateRefreshToken(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	// Revoke the used refresh token so it cannot be replayed
	if expiry, err := h.jwtManager.GetTokenExpiry(req.RefreshToken); err == nil {
		if err := h.blacklistService.RevokeToken(c.Context(), claims.ID, claims.UserID, expiry); err != nil {
			return response.InternalServerError(c, "Failed to rotate refresh token")
		}
	}

	return response.Success(c, RefreshResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    24 * 60 * 60,
	})
}

// LogoutRequest optionally carries the refresh token to revoke alongside
// the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the current access token, and the refresh token when one
// is supplied.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	claims, _ := middleware.GetClaims(c)
	if claims != nil && claims.ExpiresAt != nil {
		if err := h.blacklistService.RevokeToken(c.Context(), jti, userID, claims.ExpiresAt.Time); err != nil {
			return response.InternalServerError(c, "Failed to revoke token")
		}
	}

	var req LogoutRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		if refreshClaims, err := h.jwtManager.ValidateToken(req.RefreshToken); err == nil && refreshClaims.TokenType == "refresh" {
			if refreshClaims.ExpiresAt != nil {
				if err := h.blacklistService.RevokeToken(c.Context(), refreshClaims.ID, userID, refreshClaims.ExpiresAt.Time); err != nil {
					return response.InternalServerError(c, "Failed to revoke refresh token")
				}
			}
		}
	}

	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}

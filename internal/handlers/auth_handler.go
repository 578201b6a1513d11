package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// AuthHandler serves login, logout, token refresh and account self-service.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login authenticates with email + password and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "email and password are required", err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Bad credentials read as 401 here, not the generic permission 403.
		if permissionErr, ok := services.IsPermissionError(err); ok {
			ErrorResponse(c, http.StatusUnauthorized, permissionErr.Error(), nil)
			return
		}
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", result)
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.Refresh); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

// Refresh rotates a refresh token into a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if permissionErr, ok := services.IsPermissionError(err); ok {
			ErrorResponse(c, http.StatusUnauthorized, permissionErr.Error(), nil)
			return
		}
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Token refreshed", result)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "", middleware.CurrentUser(c))
}

// UpdateMe updates the authenticated account's name and phone.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var input services.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated", user)
}

// ChangePassword verifies the old password before applying the new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), req.OldPassword, req.NewPassword); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Password changed", nil)
}

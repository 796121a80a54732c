package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/services"
	"kleenestar/internal/session"
)

type PasswordHandler struct {
	resets      services.PasswordResetService
	userService services.UserService
	authService services.AuthService
	sessions    session.Store
}

func NewPasswordHandler(
	resets services.PasswordResetService,
	userService services.UserService,
	authService services.AuthService,
	sessions session.Store,
) *PasswordHandler {
	return &PasswordHandler{
		resets:      resets,
		userService: userService,
		authService: authService,
		sessions:    sessions,
	}
}

// @Summary      Request a password reset code
// @Description  Responds identically whether or not the account exists
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/password/reset-request/ [post]
func (h *PasswordHandler) ResetRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.RequestReset(req.Email); err != nil {
		// storage trouble; the response body must stay identical anyway
		log.Printf("[password][reset-request] error: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account with this email exists, a reset code has been sent"})
}

// @Summary      Confirm a password reset
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/password/reset-confirm/ [post]
func (h *PasswordHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token           string `json:"token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// field validation happens before any storage access
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"confirm_password": "Passwords do not match"}})
		return
	}

	if _, err := h.resets.ResetPassword(strings.TrimSpace(req.Token), req.NewPassword); err != nil {
		if err != services.ErrResetTokenInvalid {
			log.Printf("[password][reset-confirm] error: %v", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// @Summary      Change password (authenticated)
// @Description  The current session survives; its auth hash is re-derived
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/password/change/ [post]
func (h *PasswordHandler) Change(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"confirm_password": "Passwords do not match"}})
		return
	}

	newHash, err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if err == services.ErrWrongPassword {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"current_password": "Current password is incorrect"}})
			return
		}
		log.Printf("[password][change] error for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	// keep this session valid under the new hash
	if sessionID := currentSessionID(c); sessionID != "" {
		if err := h.sessions.RefreshAuthHash(c.Request.Context(), sessionID, h.authService.SessionAuthHash(newHash)); err != nil {
			log.Printf("[password][change] session refresh failed for user_id=%d: %v", userID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

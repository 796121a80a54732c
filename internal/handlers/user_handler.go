package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/models"
	"kleenestar/internal/services"
)

type UserHandler struct {
	service     services.UserService
	authService services.AuthService
}

func NewUserHandler(service services.UserService, authService services.AuthService) *UserHandler {
	return &UserHandler{service: service, authService: authService}
}

// ListUsers returns the collection visible to the caller, which is just
// the caller themselves.
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}
	user, err := h.service.GetUserByID(userID)
	if err != nil {
		log.Printf("[users][list] lookup failed for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, []userResponse{toUserResponse(user)})
}

type createUserRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// CreateUser mirrors registration for authenticated clients.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"confirm_password": "Passwords do not match"}})
		return
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		if !phonePattern.MatchString(phone) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"phone_number": "Enter a valid phone number"}})
			return
		}
		user.PhoneNumber = &phone
	}

	if err := h.service.Register(user, req.Password); err != nil {
		if err == services.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": "This email is already registered"}})
			return
		}
		log.Printf("[users][create] service error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// @Summary      Current user profile
// @Tags         Users
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/users/me/ [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}
	user, err := h.service.GetUserByID(userID)
	if err != nil {
		log.Printf("[users][me] lookup failed for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateDeviceToken stores the mobile push token for the current user.
func (h *UserHandler) UpdateDeviceToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}

	var req struct {
		DeviceToken string `json:"device_token" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateDeviceToken(userID, req.DeviceToken); err != nil {
		log.Printf("[users][device-token] update failed for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token updated successfully"})
}

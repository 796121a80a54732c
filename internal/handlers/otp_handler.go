package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/services"
	"kleenestar/internal/session"
)

type OTPHandler struct {
	otpService  services.OTPService
	authService services.AuthService
	sessions    session.Store
	sessionTTL  time.Duration
}

func NewOTPHandler(otpService services.OTPService, authService services.AuthService, sessions session.Store, sessionTTL time.Duration) *OTPHandler {
	return &OTPHandler{
		otpService:  otpService,
		authService: authService,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
	}
}

// @Summary      Send a login OTP to a registered phone number
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/login/send-otp/ [post]
func (h *OTPHandler) SendOTP(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if !phonePattern.MatchString(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Enter a valid phone number"})
		return
	}

	if err := h.otpService.SendLoginOTP(phone); err != nil {
		if err == services.ErrPhoneNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User with this phone number does not exist"})
			return
		}
		log.Printf("[otp][send] error for phone=%s: %v", phone, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// @Summary      Log in by phone OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /auth/login/verify-otp/ [post]
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.otpService.VerifyLoginOTP(strings.TrimSpace(req.PhoneNumber), strings.TrimSpace(req.OTP))
	if err != nil {
		switch err {
		case services.ErrNoActiveOTP:
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid OTP found"})
		case services.ErrOTPExpired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP has expired"})
		case services.ErrTooManyAttempts:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Too many failed attempts. Request a new OTP"})
		case services.ErrOTPInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		default:
			log.Printf("[otp][verify] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), user.ID, h.authService.SessionAuthHash(user.PasswordHash))
	if err != nil {
		log.Printf("[otp][verify] create session failed for user_id=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(session.CookieName, sess.ID, int(h.sessionTTL.Seconds()), "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    toUserResponse(user),
	})
}

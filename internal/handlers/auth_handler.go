package handlers

import (
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/models"
	"kleenestar/internal/services"
	"kleenestar/internal/session"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

type AuthHandler struct {
	userService   services.UserService
	authService   services.AuthService
	verifications services.VerificationService
	sessions      session.Store
	sessionTTL    time.Duration
}

func NewAuthHandler(
	userService services.UserService,
	authService services.AuthService,
	verifications services.VerificationService,
	sessions session.Store,
	sessionTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		authService:   authService,
		verifications: verifications,
		sessions:      sessions,
		sessionTTL:    sessionTTL,
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionID string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(session.CookieName, sessionID, maxAge, "/", "", true, true)
}

type registerRequest struct {
	FirstName              string `json:"first_name" binding:"required"`
	LastName               string `json:"last_name" binding:"required"`
	Email                  string `json:"email" binding:"required,email"`
	PhoneNumber            string `json:"phone_number"`
	DateOfBirth            string `json:"date_of_birth"`
	Password               string `json:"password" binding:"required,min=6"`
	ConfirmPassword        string `json:"confirm_password" binding:"required"`
	IsNewsletterInterested bool   `json:"is_newsletter_interested"`
}

// @Summary      Register a new account
// @Description  Creates an unverified user and emails a 6-digit verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        registration  body      registerRequest  true  "Registration data"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /auth/register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldErrs := gin.H{}
	if req.Password != req.ConfirmPassword {
		fieldErrs["confirm_password"] = "Passwords do not match"
	}

	user := &models.User{
		FirstName:              strings.TrimSpace(req.FirstName),
		LastName:               strings.TrimSpace(req.LastName),
		Email:                  strings.TrimSpace(strings.ToLower(req.Email)),
		IsNewsletterInterested: req.IsNewsletterInterested,
	}

	if req.PhoneNumber != "" {
		phone := strings.TrimSpace(req.PhoneNumber)
		if !phonePattern.MatchString(phone) {
			fieldErrs["phone_number"] = "Enter a valid phone number"
		} else {
			user.PhoneNumber = &phone
		}
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			fieldErrs["date_of_birth"] = "Enter a valid date (YYYY-MM-DD)"
		} else if dob.After(time.Now()) {
			fieldErrs["date_of_birth"] = "Date of birth cannot be in the future"
		} else {
			user.DateOfBirth = &dob
		}
	}

	if existing, err := h.userService.GetUserByEmail(user.Email); err == nil && existing != nil {
		fieldErrs["email"] = "This email is already registered"
	}
	if user.PhoneNumber != nil {
		if existing, err := h.userService.GetUserByPhone(*user.PhoneNumber); err == nil && existing != nil {
			fieldErrs["phone_number"] = "This phone number is already in use"
		}
	}

	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	if err := h.userService.Register(user, req.Password); err != nil {
		if err == services.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": "This email is already registered"}})
			return
		}
		log.Printf("[auth][register] service error for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Verify your email with the code we sent you.",
		"user":    toUserResponse(user),
	})
}

// @Summary      Verify email address
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/verify-email/ [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.verifications.ConfirmCode(strings.TrimSpace(req.Token)); err != nil {
		if err != services.ErrCodeInvalid {
			log.Printf("[auth][verify-email] error: %v", err)
		}
		// wrong, expired and consumed codes are indistinguishable
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// ResendVerification re-issues a code. The response never reveals whether
// the email belongs to an account.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.userService.GetUserByEmail(email)
	if err == nil && user != nil && !user.IsVerified {
		if err := h.verifications.SendCode(user.ID, user.Email); err != nil {
			log.Printf("[auth][resend] failed for user_id=%d: %v", user.ID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a new code has been sent"})
}

// @Summary      Log in with email and password
// @Description  Establishes a server-side session; unverified accounts get a fresh code instead
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	log.Printf("[auth][login] attempt email=%q", email)

	user, err := h.userService.GetUserByEmail(email)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		log.Printf("[auth][login] password mismatch for user_id=%d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.IsVerified {
		// valid credentials, unverified account: re-issue the code
		if err := h.verifications.SendCode(user.ID, user.Email); err != nil {
			log.Printf("[auth][login] resend code failed for user_id=%d: %v", user.ID, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not verified. Check your email for a new verification code"})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), user.ID, h.authService.SessionAuthHash(user.PasswordHash))
	if err != nil {
		log.Printf("[auth][login] create session failed for user_id=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	h.setSessionCookie(c, sess.ID, int(h.sessionTTL.Seconds()))

	log.Printf("[auth][login] success user_id=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    toUserResponse(user),
	})
}

// @Summary      Log out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := currentSessionID(c); sessionID != "" {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			log.Printf("[auth][logout] delete session failed: %v", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

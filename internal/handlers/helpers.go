package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/models"
)

// tolerant to the value type in the context (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func currentUserID(c *gin.Context) (int, bool) {
	return getIntFromCtx(c, "user_id")
}

func currentSessionID(c *gin.Context) string {
	if v, ok := c.Get("session_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

type userResponse struct {
	ID                     int     `json:"id"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	Email                  string  `json:"email"`
	PhoneNumber            *string `json:"phone_number"`
	DateOfBirth            *string `json:"date_of_birth"`
	Age                    *int    `json:"age"`
	IsNewsletterInterested bool    `json:"is_newsletter_interested"`
	IsVerified             bool    `json:"is_verified"`
	IsPhoneVerified        bool    `json:"is_phone_verified"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		ID:                     u.ID,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Email:                  u.Email,
		PhoneNumber:            u.PhoneNumber,
		Age:                    u.Age(),
		IsNewsletterInterested: u.IsNewsletterInterested,
		IsVerified:             u.IsVerified,
		IsPhoneVerified:        u.IsPhoneVerified,
	}
	if u.DateOfBirth != nil {
		s := u.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &s
	}
	return resp
}

package routes

import (
	"github.com/gin-gonic/gin"

	"kleenestar/internal/handlers"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	otpHandler *handlers.OTPHandler,
	passwordHandler *handlers.PasswordHandler,
	userHandler *handlers.UserHandler,
	searchHandler *handlers.SearchHandler,
	authRequired gin.HandlerFunc,
) *gin.Engine {

	api := r.Group("/api")

	// ---- public
	auth := api.Group("/auth")
	{
		auth.POST("/register/", authHandler.Register)
		auth.POST("/verify-email/", authHandler.VerifyEmail)
		auth.POST("/verify-email/resend/", authHandler.ResendVerification)
		auth.POST("/login/", authHandler.Login)
		auth.POST("/login/send-otp/", otpHandler.SendOTP)
		auth.POST("/login/verify-otp/", otpHandler.VerifyOTP)
		auth.POST("/password/reset-request/", passwordHandler.ResetRequest)
		auth.POST("/password/reset-confirm/", passwordHandler.ResetConfirm)
	}

	// ---- protected (session cookie)
	authed := api.Group("/auth", authRequired)
	{
		authed.POST("/logout/", authHandler.Logout)
		authed.POST("/password/change/", passwordHandler.Change)

		// user collection is restricted to the requester; no detail routes
		users := authed.Group("/users")
		{
			users.GET("/", userHandler.ListUsers)
			users.POST("/", userHandler.CreateUser)
			users.GET("/me/", userHandler.Me)
			users.POST("/update_device_token/", userHandler.UpdateDeviceToken)
		}
	}

	api.POST("/search/", authRequired, searchHandler.Search)

	return r
}

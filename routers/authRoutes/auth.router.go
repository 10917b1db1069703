package authRoutes

import (
	authController "campuspay/controllers/auth"
	authValidator "campuspay/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Post("/register", authValidator.Register(), authController.Register)
	authGroup.Post("/forgot-password", authValidator.ForgotPassword(), authController.ForgotPasswordSendOTP)
	authGroup.Post("/verify-otp", authValidator.VerifyOTP(), authController.VerifyOTP)
	authGroup.Post("/reset-password", authValidator.ResetPassword(), authController.ResetPassword)
}

package authValidator

import (
	"strings"

	"campuspay/middleware"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the parsed login body.
type LoginRequest struct {
	SchoolID string `json:"school_id"`
	Password string `json:"password"`
}

// Login validates the student login request
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.SchoolID == "" {
			errors["school_id"] = "School ID is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// RegisterRequest is the parsed registration body.
type RegisterRequest struct {
	SchoolID     string `json:"school_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	GradeSection string `json:"grade_section"`
	Password     string `json:"password"`
}

// Register validates the student registration request
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.SchoolID == "" {
			errors["school_id"] = "School ID is required!"
		}
		if reqData.FirstName == "" {
			errors["first_name"] = "First name is required!"
		}
		if reqData.LastName == "" {
			errors["last_name"] = "Last name is required!"
		}
		if len(strings.TrimSpace(reqData.Password)) < 8 {
			errors["password"] = "Password must be at least 8 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

// ForgotPasswordRequest asks for an OTP for one school ID.
type ForgotPasswordRequest struct {
	SchoolID string `json:"school_id"`
}

// ForgotPassword validates the OTP request
func ForgotPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ForgotPasswordRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.SchoolID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"school_id": "School ID is required!"})
		}

		c.Locals("validatedForgotPassword", reqData)
		return c.Next()
	}
}

// VerifyOTPRequest carries the code to check.
type VerifyOTPRequest struct {
	SchoolID string `json:"school_id"`
	Code     string `json:"code"`
}

// VerifyOTP validates the OTP verification request
func VerifyOTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyOTPRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.SchoolID == "" {
			errors["school_id"] = "School ID is required!"
		}
		if len(reqData.Code) != 6 {
			errors["code"] = "A 6-digit code is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVerifyOTP", reqData)
		return c.Next()
	}
}

// ResetPasswordRequest consumes an OTP and sets a new password.
type ResetPasswordRequest struct {
	SchoolID    string `json:"school_id"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ResetPassword validates the password reset request
func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResetPasswordRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.SchoolID == "" {
			errors["school_id"] = "School ID is required!"
		}
		if len(reqData.Code) != 6 {
			errors["code"] = "A 6-digit code is required!"
		}
		if len(strings.TrimSpace(reqData.NewPassword)) < 8 {
			errors["new_password"] = "Password must be at least 8 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedResetPassword", reqData)
		return c.Next()
	}
}

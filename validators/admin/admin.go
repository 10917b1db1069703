package adminValidator

import (
	"strings"

	"campuspay/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminLoginRequest is the parsed admin login body.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates the admin login request
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdminLoginRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Username == "" {
			errors["username"] = "Username is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminLogin", reqData)
		return c.Next()
	}
}

// StudentRequest is the parsed create/update student body.
type StudentRequest struct {
	SchoolID     string `json:"school_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	GradeSection string `json:"grade_section"`
	Password     string `json:"password"`
}

// CreateStudent validates a new student record
func CreateStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StudentRequest)

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

		c.Locals("validatedStudent", reqData)
		return c.Next()
	}
}

// UpdateStudent validates a student update; password is optional here.
func UpdateStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StudentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Password != "" && len(strings.TrimSpace(reqData.Password)) < 8 {
			return middleware.ValidationErrorResponse(c, map[string]string{"password": "Password must be at least 8 characters long!"})
		}

		c.Locals("validatedStudent", reqData)
		return c.Next()
	}
}

// ManualCashInRequest credits a student outside the payment gateway.
type ManualCashInRequest struct {
	StudentID uint            `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// ManualCashIn validates a manual credit request
func ManualCashIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ManualCashInRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.StudentID == 0 {
			errors["student_id"] = "Student ID is required!"
		}
		if reqData.Amount.LessThanOrEqual(decimal.Zero) {
			errors["amount"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedManualCashIn", reqData)
		return c.Next()
	}
}

package adminRoutes

import (
	adminController "campuspay/controllers/admin"
	"campuspay/middleware"
	adminValidator "campuspay/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	adminGroup.Post("/login", adminValidator.Login(), adminController.Login)

	protected := adminGroup.Group("", middleware.JWTMiddleware, middleware.AdminOnly)
	protected.Get("/students", adminController.ListStudents)
	protected.Post("/students", adminValidator.CreateStudent(), adminController.CreateStudent)
	protected.Put("/students/:id", adminValidator.UpdateStudent(), adminController.UpdateStudent)
	protected.Delete("/students/:id", adminController.DeactivateStudent)
	protected.Get("/students/:id/history", adminController.StudentHistory)
	protected.Post("/cashin", adminValidator.ManualCashIn(), adminController.ManualCashIn)
}

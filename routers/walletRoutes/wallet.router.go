package walletRoutes

import (
	walletController "campuspay/controllers/wallet"
	"campuspay/middleware"
	walletValidator "campuspay/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App) {
	walletGroup := app.Group("/wallet", middleware.JWTMiddleware)

	walletGroup.Get("/balance", walletController.GetBalance)
	walletGroup.Get("/transactions", walletController.GetTransactions)
	walletGroup.Get("/weekly-spending", walletController.GetWeeklySpending)
	walletGroup.Post("/purchase", walletValidator.Purchase(), walletController.ProcessPurchase)
	walletGroup.Post("/cashin", walletValidator.CashIn(), walletController.RequestCashIn)
	walletGroup.Post("/payment-link", walletValidator.PaymentLink(), walletController.CreatePaymentLink)
}

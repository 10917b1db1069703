package walletController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campuspay/config"
	"campuspay/database"
	"campuspay/middleware"
	"campuspay/models"
	walletRoutes "campuspay/routers/walletRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupWalletApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:      "test-key",
		SaltRound:   4,
		EnableEmail: false,
		EnableSMS:   false,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	walletRoutes.SetupWalletRoutes(app)
	return app, db
}

func seedStudent(t *testing.T, db *gorm.DB, balance string) (*models.Student, string) {
	t.Helper()

	student := models.Student{
		SchoolID:     "2024-0500",
		FirstName:    "Liza",
		LastName:     "Mendoza",
		FullName:     "Liza Mendoza",
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&student).Error)

	token, err := middleware.GenerateJWT(student.ID, student.SchoolID, student.FullName, "STUDENT")
	require.NoError(t, err)
	return &student, token
}

func walletRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestWalletRequiresToken(t *testing.T) {
	app, _ := setupWalletApp(t)

	resp, _ := walletRequest(t, app, http.MethodGet, "/wallet/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = walletRequest(t, app, http.MethodGet, "/wallet/balance", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetBalance(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "123.45")

	resp, body := walletRequest(t, app, http.MethodGet, "/wallet/balance", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "123.45", data["balance"])
	assert.Equal(t, "PHP", data["currency"])
}

func TestPurchaseHappyPath(t *testing.T) {
	app, db := setupWalletApp(t)
	student, token := seedStudent(t, db, "100.00")

	resp, body := walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
		"amount":    "30.00",
		"item_name": "Lunch",
		"location":  "Canteen",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "70", data["new_balance"])

	var row models.Transaction
	require.NoError(t, db.First(&row, "student_id = ?", student.ID).Error)
	assert.Equal(t, models.TransactionTypePurchase, row.TransactionType)
	assert.Equal(t, "Lunch", row.ItemName)
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	app, db := setupWalletApp(t)
	student, token := seedStudent(t, db, "20.00")

	resp, body := walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
		"amount":    "35.00",
		"item_name": "Books",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Insufficient balance", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "20", data["current_balance"])
	assert.Equal(t, "15", data["shortfall"])

	// no ledger row, balance untouched
	var count int64
	db.Model(&models.Transaction{}).Where("student_id = ?", student.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPurchaseValidation(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "100.00")

	resp, _ := walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
		"amount":    "0",
		"item_name": "Lunch",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
		"amount": "10.00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTransactionHistoryPagination(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "100.00")

	for i := 0; i < 3; i++ {
		resp, _ := walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
			"amount":    "5.00",
			"item_name": fmt.Sprintf("Item %d", i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := walletRequest(t, app, http.MethodGet, "/wallet/transactions?limit=2&offset=0", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["total"])
	rows := data["transactions"].([]interface{})
	require.Len(t, rows, 2)

	newest := rows[0].(map[string]interface{})
	assert.Equal(t, "Item 2", newest["item_name"])
}

func TestWeeklySpendingEndpoint(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "100.00")

	resp, _ := walletRequest(t, app, http.MethodPost, "/wallet/purchase", token, fiber.Map{
		"amount":    "12.50",
		"item_name": "Snack",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := walletRequest(t, app, http.MethodGet, "/wallet/weekly-spending", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "12.5", data["weekly_spending"])
}

func TestRequestCashInDuplicateReference(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "0.00")

	resp, body := walletRequest(t, app, http.MethodPost, "/wallet/cashin", token, fiber.Map{
		"amount":           "100.00",
		"reference_number": "GC-777",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "GC-777", data["reference_number"])
	assert.Equal(t, string(models.CashInStatusPending), data["status"])

	resp, _ = walletRequest(t, app, http.MethodPost, "/wallet/cashin", token, fiber.Map{
		"amount":           "100.00",
		"reference_number": "GC-777",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPaymentLinkBelowMinimum(t *testing.T) {
	app, db := setupWalletApp(t)
	_, token := seedStudent(t, db, "0.00")

	resp, _ := walletRequest(t, app, http.MethodPost, "/wallet/payment-link", token, fiber.Map{
		"amount": "5.00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

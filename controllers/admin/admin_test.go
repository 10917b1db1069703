package adminController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"campuspay/config"
	"campuspay/database"
	"campuspay/ledger"
	"campuspay/middleware"
	"campuspay/models"
	adminRoutes "campuspay/routers/adminRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAdminApp(t *testing.T) (*fiber.App, *gorm.DB) {
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
	adminRoutes.SetupAdminRoutes(app)
	return app, db
}

func seedAdmin(t *testing.T, db *gorm.DB) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), 4)
	require.NoError(t, err)

	admin := models.Admin{Username: "registrar", FullName: "Registrar", PasswordHash: string(hash)}
	require.NoError(t, db.Create(&admin).Error)

	token, err := middleware.GenerateJWT(admin.ID, admin.Username, admin.FullName, "ADMIN")
	require.NoError(t, err)
	return token
}

func seedAdminStudent(t *testing.T, db *gorm.DB, schoolID, balance string) *models.Student {
	t.Helper()

	student := models.Student{
		SchoolID:     schoolID,
		FirstName:    "Pedro",
		LastName:     "Penduko",
		FullName:     "Pedro Penduko",
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&student).Error)
	return &student
}

func adminRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
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

func TestAdminLogin(t *testing.T) {
	app, db := setupAdminApp(t)
	seedAdmin(t, db)

	resp, body := adminRequest(t, app, http.MethodPost, "/admin/login", "", fiber.Map{
		"username": "registrar",
		"password": "admin-pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	resp, _ = adminRequest(t, app, http.MethodPost, "/admin/login", "", fiber.Map{
		"username": "registrar",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRejectStudentToken(t *testing.T) {
	app, db := setupAdminApp(t)
	student := seedAdminStudent(t, db, "2024-0600", "0.00")

	studentToken, err := middleware.GenerateJWT(student.ID, student.SchoolID, student.FullName, "STUDENT")
	require.NoError(t, err)

	resp, _ := adminRequest(t, app, http.MethodGet, "/admin/students", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminCreateAndListStudents(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)

	resp, _ := adminRequest(t, app, http.MethodPost, "/admin/students", token, fiber.Map{
		"school_id":     "2024-0700",
		"first_name":    "Carla",
		"last_name":     "Lim",
		"grade_section": "Grade 11 - Mabini",
		"password":      "initial-pass",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// duplicate school ID is rejected
	resp, _ = adminRequest(t, app, http.MethodPost, "/admin/students", token, fiber.Map{
		"school_id":  "2024-0700",
		"first_name": "Carla",
		"last_name":  "Lim",
		"password":   "initial-pass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := adminRequest(t, app, http.MethodGet, "/admin/students?search=0700", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	students := data["students"].([]interface{})
	require.Len(t, students, 1)
	assert.Equal(t, "2024-0700", students[0].(map[string]interface{})["school_id"])
}

func TestAdminUpdateStudentKeepsBalance(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)
	student := seedAdminStudent(t, db, "2024-0800", "150.00")

	resp, _ := adminRequest(t, app, http.MethodPut, fmt.Sprintf("/admin/students/%d", student.ID), token, fiber.Map{
		"grade_section": "Grade 12 - Aguinaldo",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.Equal(t, "Grade 12 - Aguinaldo", reloaded.GradeSection)
	assert.True(t, decimal.RequireFromString("150.00").Equal(reloaded.Balance))
}

func TestAdminUpdateDoesNotClobberConcurrentCredit(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)
	student := seedAdminStudent(t, db, "2024-0850", "100.00")

	led := ledger.New(db)
	updateBody := []byte(`{"grade_section":"Grade 12 - Aguinaldo"}`)
	path := fmt.Sprintf("/admin/students/%d", student.ID)

	// interleave record edits with committed credits; the edit must only
	// touch the editable columns, never the balance
	const rounds = 10
	for i := 0; i < rounds; i++ {
		var wg sync.WaitGroup
		var updateStatus int
		var updateErr, creditErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(updateBody))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req, -1)
			if err != nil {
				updateErr = err
				return
			}
			updateStatus = resp.StatusCode
		}()
		go func() {
			defer wg.Done()
			_, creditErr = led.Credit(student.ID, ledger.Entry{
				Amount:      decimal.NewFromInt(1),
				Description: "Counter deposit",
			})
		}()
		wg.Wait()

		require.NoError(t, updateErr)
		require.NoError(t, creditErr)
		require.Equal(t, http.StatusOK, updateStatus)
	}

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.Equal(t, "Grade 12 - Aguinaldo", reloaded.GradeSection)
	assert.True(t, decimal.RequireFromString("110.00").Equal(reloaded.Balance),
		"credits committed during edits must survive, got %s", reloaded.Balance)
}

func TestAdminDeactivateStudent(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)
	student := seedAdminStudent(t, db, "2024-0900", "0.00")

	resp, _ := adminRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/students/%d", student.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.False(t, reloaded.IsActive)

	resp, _ = adminRequest(t, app, http.MethodDelete, "/admin/students/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminManualCashIn(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)
	student := seedAdminStudent(t, db, "2024-1000", "10.00")

	resp, body := adminRequest(t, app, http.MethodPost, "/admin/cashin", token, fiber.Map{
		"student_id": student.ID,
		"amount":     "90.00",
		"reason":     "Cash received at the counter",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	reference := data["reference_number"].(string)
	assert.True(t, strings.HasPrefix(reference, "MANUAL_"))

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.True(t, decimal.RequireFromString("100.00").Equal(reloaded.Balance))

	// same idempotent ledger path as the webhook: one CASH_IN row
	var row models.Transaction
	require.NoError(t, db.First(&row, "student_id = ?", student.ID).Error)
	assert.Equal(t, models.TransactionTypeCashIn, row.TransactionType)
	assert.Contains(t, row.Description, "Cash received at the counter")

	var request models.CashInRequest
	require.NoError(t, db.First(&request, "reference_number = ?", reference).Error)
	assert.Equal(t, models.CashInStatusCompleted, request.Status)
}

func TestAdminStudentHistory(t *testing.T) {
	app, db := setupAdminApp(t)
	token := seedAdmin(t, db)
	student := seedAdminStudent(t, db, "2024-1100", "10.00")

	resp, _ := adminRequest(t, app, http.MethodPost, "/admin/cashin", token, fiber.Map{
		"student_id": student.ID,
		"amount":     "40.00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := adminRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/students/%d/history", student.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total"])
	rows := data["transactions"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, string(models.TransactionTypeCashIn), rows[0].(map[string]interface{})["transaction_type"])
}

package adminController

import (
	"errors"
	"log"

	"campuspay/config"
	"campuspay/database"
	"campuspay/ledger"
	"campuspay/middleware"
	"campuspay/models"
	adminValidator "campuspay/validators/admin"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates an admin account.
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAdminLogin").(*adminValidator.AdminLoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var admin models.Admin
	if err := db.Where("username = ?", reqData.Username).First(&admin).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	token, err := middleware.GenerateJWT(admin.ID, admin.Username, admin.FullName, "ADMIN")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"admin_id": admin.ID,
		"username": admin.Username,
		"token":    token,
	})
}

// ListStudents returns student records with pagination and optional search
func ListStudents(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.Database.Db
	query := db.Model(&models.Student{})

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("school_id LIKE ? OR full_name LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var students []models.Student
	if err := query.Order("school_id ASC").Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch students!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched!", fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CreateStudent registers a student record from the admin panel
func CreateStudent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStudent").(*adminValidator.StudentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("school_id = ?", reqData.SchoolID).First(&models.Student{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "School ID already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	student := models.Student{
		SchoolID:     reqData.SchoolID,
		FirstName:    reqData.FirstName,
		LastName:     reqData.LastName,
		FullName:     reqData.FirstName + " " + reqData.LastName,
		Email:        reqData.Email,
		Phone:        reqData.Phone,
		GradeSection: reqData.GradeSection,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&student).Error; err != nil {
		log.Printf("Error creating student: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student created.", student)
}

// UpdateStudent edits a student record; balance is deliberately not editable
// here, only the ledger may change it.
func UpdateStudent(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("id")
	if err != nil || studentID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid student id!", nil)
	}

	reqData, ok := c.Locals("validatedStudent").(*adminValidator.StudentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	if reqData.FirstName != "" {
		student.FirstName = reqData.FirstName
	}
	if reqData.LastName != "" {
		student.LastName = reqData.LastName
	}
	student.FullName = student.FirstName + " " + student.LastName
	if reqData.Email != "" {
		student.Email = reqData.Email
	}
	if reqData.Phone != "" {
		student.Phone = reqData.Phone
	}
	if reqData.GradeSection != "" {
		student.GradeSection = reqData.GradeSection
	}
	if reqData.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		student.PasswordHash = string(hash)
	}

	// write only the editable columns; a full-row save could clobber a
	// balance mutation committed since the read above
	err = db.Model(&student).
		Select("first_name", "last_name", "full_name", "email", "phone", "grade_section", "password_hash").
		Updates(&student).Error
	if err != nil {
		log.Printf("Error updating student %d: %v", studentID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student updated.", student)
}

// DeactivateStudent disables login and mutations for an account. Records are
// never hard-deleted while ledger rows reference them.
func DeactivateStudent(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("id")
	if err != nil || studentID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid student id!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	if err := db.Model(&student).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student deactivated.", nil)
}

// ManualCashIn credits a wallet outside the payment gateway, e.g. for cash
// received over the counter. Goes through the same idempotent ledger path as
// the webhook.
func ManualCashIn(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedManualCashIn").(*adminValidator.ManualCashInRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	description := "Manual cash in"
	if reqData.Reason != "" {
		description = "Manual cash in: " + reqData.Reason
	}

	led := ledger.New(database.Database.Db)
	reference := "MANUAL_" + uuid.NewString()
	result, err := led.CompleteCashIn(reqData.StudentID, reqData.Amount, reference, description, nil)
	if err != nil {
		if errors.Is(err, ledger.ErrStudentNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
		}
		log.Printf("Manual cash-in failed for student %d: %v", reqData.StudentID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to credit balance!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance credited.", fiber.Map{
		"student_id":       reqData.StudentID,
		"amount":           reqData.Amount,
		"previous_balance": result.PreviousBalance,
		"new_balance":      result.NewBalance,
		"reference_number": reference,
	})
}

// StudentHistory returns one student's ledger, newest first
func StudentHistory(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("id")
	if err != nil || studentID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid student id!", nil)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	db := database.Database.Db

	var student models.Student
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	led := ledger.New(db)
	rows, total, err := led.Transactions(student.ID, limit, offset)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student history fetched!", fiber.Map{
		"student": fiber.Map{
			"id":        student.ID,
			"school_id": student.SchoolID,
			"name":      student.FullName,
			"balance":   student.Balance,
		},
		"transactions": rows,
		"total":        total,
	})
}

package authController

import (
	"errors"
	"log"
	"time"

	"campuspay/config"
	"campuspay/database"
	"campuspay/middleware"
	"campuspay/models"
	"campuspay/utils"
	authValidator "campuspay/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// otpValidity is how long a password-reset code stays usable.
const otpValidity = 15 * time.Minute

// Login authenticates a student by school ID and password.
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.Where("school_id = ?", reqData.SchoolID).First(&student).Error; err != nil {
		// same message for unknown ID and wrong password
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "School ID or password is incorrect", nil)
	}

	if !student.IsActive {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account has been deactivated", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "School ID or password is incorrect", nil)
	}

	// column-scoped update; writing the whole row back could clobber a
	// balance mutation committed since the read above
	now := time.Now()
	student.LastLogin = &now
	if err := db.Model(&student).Update("last_login", now).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	tracking := models.LoginTracking{
		StudentID: student.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := db.Create(&tracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}

	token, err := middleware.GenerateJWT(student.ID, student.SchoolID, student.FullName, "STUDENT")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"student_id":    student.ID,
		"school_id":     student.SchoolID,
		"name":          student.FullName,
		"balance":       student.Balance,
		"grade_section": student.GradeSection,
		"token":         token,
	})
}

// Register creates a new student account with a bcrypt password hash.
func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("school_id = ?", reqData.SchoolID).First(&models.Student{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "School ID already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
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
		log.Printf("Error saving student to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful. You can now login.", fiber.Map{
		"student_id": student.ID,
		"school_id":  student.SchoolID,
	})
}

// ForgotPasswordSendOTP issues a 6-digit reset code valid for 15 minutes and
// delivers it by email and SMS.
func ForgotPasswordSendOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.Where("school_id = ?", reqData.SchoolID).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School ID not found", nil)
	}

	otp := utils.GenerateOTP()
	reset := models.PasswordReset{
		StudentID: student.ID,
		OTPCode:   otp,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := db.Create(&reset).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create OTP!", nil)
	}

	if student.Email != "" {
		go utils.SendOTPEmail(student.Email, student.FullName, otp)
	}
	if student.Phone != "" {
		go utils.SendOTPSMS(student.Phone, otp)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent. Check your email.", nil)
}

// VerifyOTP checks a reset code without consuming it.
func VerifyOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVerifyOTP").(*authValidator.VerifyOTPRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.Where("school_id = ?", reqData.SchoolID).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School ID not found", nil)
	}

	var reset models.PasswordReset
	err := db.Where("student_id = ? AND otp_code = ? AND is_used = ? AND expires_at > ?",
		student.ID, reqData.Code, false, time.Now()).First(&reset).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Invalid or expired OTP", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP verified", nil)
}

// ResetPassword consumes an unexpired, unused OTP and sets a new password.
// The OTP check, the is_used flip, and the password update commit together.
func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.Student
	if err := db.Where("school_id = ?", reqData.SchoolID).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School ID not found", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		if err := tx.Where("student_id = ? AND otp_code = ? AND is_used = ? AND expires_at > ?",
			student.ID, reqData.Code, false, time.Now()).First(&reset).Error; err != nil {
			return err
		}

		if err := tx.Model(&reset).Update("is_used", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.Student{}).Where("id = ?", student.ID).
			Update("password_hash", string(hash)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Invalid or expired OTP", nil)
		}
		log.Printf("Error resetting password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reset password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}

package utils

import (
	"log"
	"time"

	"campuspay/database"
	"campuspay/models"

	"github.com/robfig/cron/v3"
)

// stalePendingAge is how long a PENDING cash-in request may sit unconfirmed
// before the maintenance job removes it.
const stalePendingAge = 7 * 24 * time.Hour

// InitializeCleanupScheduler starts the daily maintenance job.
func InitializeCleanupScheduler() *cron.Cron {
	c := cron.New()

	// Run daily at 3 AM
	_, err := c.AddFunc("0 3 * * *", func() {
		log.Println("[CLEANUP] Running daily maintenance...")
		PurgeExpiredPasswordResets()
		ExpireStalePendingCashIns()
	})
	if err != nil {
		log.Printf("[CLEANUP] Failed to schedule maintenance job: %v", err)
		return c
	}

	c.Start()
	log.Println("[CLEANUP] Scheduler started - runs daily at 3 AM")
	return c
}

// PurgeExpiredPasswordResets deletes used or expired OTP rows. They carry no
// audit value once unusable; transactions and completed cash-in requests are
// never purged.
func PurgeExpiredPasswordResets() {
	db := database.Database.Db

	result := db.Unscoped().Where("is_used = ? OR expires_at < ?", true, time.Now()).
		Delete(&models.PasswordReset{})
	if result.Error != nil {
		log.Printf("[CLEANUP] Error purging password resets: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CLEANUP] Purged %d stale password reset rows", result.RowsAffected)
	}
}

// ExpireStalePendingCashIns deletes PENDING cash-in requests older than a
// week. They never credited a balance, so removing them frees the reference;
// a late gateway delivery recreates the request and credits normally.
// COMPLETED requests are kept forever as part of the audit trail.
func ExpireStalePendingCashIns() {
	db := database.Database.Db
	cutoff := time.Now().Add(-stalePendingAge)

	result := db.Unscoped().
		Where("status = ? AND requested_at < ?", models.CashInStatusPending, cutoff).
		Delete(&models.CashInRequest{})
	if result.Error != nil {
		log.Printf("[CLEANUP] Error expiring pending cash-ins: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CLEANUP] Expired %d stale pending cash-in requests", result.RowsAffected)
	}
}

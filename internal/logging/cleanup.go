package logging

import (
	"log/slog"
	"time"

	"github.com/kmed-health/kmed-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes operational system_logs
// older than 30 days. Audit rows (empty level) are append-only and never
// swept.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep(db)
			case <-done:
				return
			}
		}
	}()
}

func sweep(db *gorm.DB) {
	cutoff := time.Now().AddDate(0, 0, -30)
	result := db.Where("created_at < ? AND level <> ''", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}

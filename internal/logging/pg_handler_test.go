package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmed-health/kmed-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLogDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SystemLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPGHandlerOnlyHandlesErrors(t *testing.T) {
	h := NewPGHandler(setupLogDB(t))
	defer h.Stop()

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("INFO should not reach the DB handler")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("ERROR should reach the DB handler")
	}
}

func TestPGHandlerWritesSystemLogRow(t *testing.T) {
	db := setupLogDB(t)
	h := NewPGHandler(db)

	rec := slog.NewRecord(time.Now(), slog.LevelError, "claim sync failed", 0)
	rec.AddAttrs(
		slog.String("action", "CLAIM_SYNC"),
		slog.String("user_id", "u-1"),
		slog.String("source", "nightly"),
	)
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle: %v", err)
	}
	h.Stop() // final flush

	var rows []models.SystemLog
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := db.Find(&rows).Error; err != nil {
			t.Fatalf("load rows: %v", err)
		}
		if len(rows) > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Level != "ERROR" || rows[0].Action != "CLAIM_SYNC" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[0].UserID == nil || *rows[0].UserID != "u-1" {
		t.Fatalf("user_id not mapped: %v", rows[0].UserID)
	}
	var details map[string]interface{}
	if err := json.Unmarshal(rows[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details["message"] != "claim sync failed" || details["source"] != "nightly" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestSweepKeepsAuditRows(t *testing.T) {
	db := setupLogDB(t)
	old := time.Now().AddDate(0, 0, -40)

	// old audit row (keep), old operational row (sweep), recent operational row (keep)
	rows := []models.SystemLog{
		{ID: uuid.New(), Action: "ROLE_UPGRADE", Level: "", CreatedAt: old},
		{ID: uuid.New(), Action: "LOG", Level: "ERROR", CreatedAt: old},
		{ID: uuid.New(), Action: "LOG", Level: "ERROR", CreatedAt: time.Now()},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	sweep(db)

	var remaining []models.SystemLog
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 rows after sweep, got %d", len(remaining))
	}
	for _, r := range remaining {
		if r.Level == "ERROR" && r.CreatedAt.Before(time.Now().AddDate(0, 0, -35)) {
			t.Fatalf("old operational row survived: %+v", r)
		}
	}
}

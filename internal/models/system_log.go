package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog is the append-only audit sink. UserID is nil for
// system-initiated actions such as bulk role changes. Rows are never
// updated or deleted by application code; only the retention sweep in
// internal/logging removes old operational entries.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *string        `gorm:"size:36;index" json:"user_id"`
	Action    string         `gorm:"size:100;not null" json:"action"`
	Level     string         `gorm:"size:10" json:"level"`
	Details   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

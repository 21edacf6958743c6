package models

import (
	"time"

	"github.com/google/uuid"
)

// FraudAlert is a schema placeholder like Claim; the fraud-detection
// pipeline owning it is out of scope here.
type FraudAlert struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClaimID     *uuid.UUID `gorm:"type:uuid" json:"claim_id"`
	AlertType   string     `gorm:"size:50" json:"alert_type"`
	Severity    string     `gorm:"size:20;default:'low';index:idx_fraud_alerts_severity" json:"severity"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:30;default:'open'" json:"status"`
	DetectedBy  string     `gorm:"size:100" json:"detected_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

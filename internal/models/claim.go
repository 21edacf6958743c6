package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Claim mirrors the claims-processing schema. This service bootstraps the
// table but never reads or writes it; claim ingestion lives in a separate
// system.
type Claim struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClaimNumber    string         `gorm:"size:50;not null;uniqueIndex" json:"claim_number"`
	PatientID      *uuid.UUID     `gorm:"type:uuid" json:"patient_id"`
	ProviderID     *uuid.UUID     `gorm:"type:uuid" json:"provider_id"`
	Amount         float64        `gorm:"type:numeric(12,2)" json:"amount"`
	Status         string         `gorm:"size:30;default:'submitted';index:idx_claims_status" json:"status"`
	RiskLevel      string         `gorm:"size:20;default:'low';index:idx_claims_risk_level" json:"risk_level"`
	DiagnosisCodes datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"diagnosis_codes"`
	ProcedureCodes datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"procedure_codes"`
	ServiceDate    *time.Time     `json:"service_date"`
	SubmittedAt    *time.Time     `json:"submitted_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

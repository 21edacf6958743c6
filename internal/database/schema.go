package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// schemaStatements returns the ordered DDL for the KMED schema. Every
// statement is a no-op when its object already exists, so the bootstrap
// can be re-run safely. Statements run outside a transaction: a failure
// aborts the run and leaves earlier objects in place.
func schemaStatements() []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255),
			role VARCHAR(20) NOT NULL DEFAULT 'patient',
			first_name VARCHAR(100),
			last_name VARCHAR(100),
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS claims (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			claim_number VARCHAR(50) NOT NULL UNIQUE,
			patient_id UUID REFERENCES users(id),
			provider_id UUID REFERENCES users(id),
			amount NUMERIC(12,2),
			status VARCHAR(30) DEFAULT 'submitted',
			risk_level VARCHAR(20) DEFAULT 'low',
			diagnosis_codes JSONB DEFAULT '[]',
			procedure_codes JSONB DEFAULT '[]',
			service_date DATE,
			submitted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS fraud_alerts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			claim_id UUID REFERENCES claims(id),
			alert_type VARCHAR(50),
			severity VARCHAR(20) DEFAULT 'low',
			description TEXT,
			status VARCHAR(30) DEFAULT 'open',
			detected_by VARCHAR(100),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS user_google_mappings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			google_id VARCHAR(255) NOT NULL UNIQUE,
			google_email VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID REFERENCES users(id),
			action VARCHAR(100) NOT NULL,
			resource VARCHAR(100),
			details JSONB DEFAULT '{}',
			ip_address VARCHAR(45),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS system_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id VARCHAR(36),
			action VARCHAR(100) NOT NULL,
			level VARCHAR(10),
			details JSONB DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_risk_level ON claims(risk_level)`,
		`CREATE INDEX IF NOT EXISTS idx_fraud_alerts_severity ON fraud_alerts(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_system_logs_user_id ON system_logs(user_id)`,
	}
}

// CreateTables bootstraps the relational schema. Safe to re-run.
func CreateTables(db *gorm.DB) error {
	for _, stmt := range schemaStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	slog.Info("schema bootstrap complete", "statements", len(schemaStatements()))
	return nil
}

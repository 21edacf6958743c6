package database

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ErrUsersTableMissing means the schema bootstrap has not run yet.
var ErrUsersTableMissing = errors.New("users table missing: run create-tables first")

// googleAuthStatements extends users with Google-identity columns and
// creates the mapping table. auth_method is constrained to local/google;
// repeated runs are no-ops.
func googleAuthStatements() []string {
	return []string{
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS google_id VARCHAR(255)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS google_email VARCHAR(255)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS google_name VARCHAR(255)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS google_picture VARCHAR(512)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS auth_method VARCHAR(20) DEFAULT 'local'
			CHECK (auth_method IN ('local', 'google'))`,

		`CREATE TABLE IF NOT EXISTS user_google_mappings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			google_id VARCHAR(255) NOT NULL UNIQUE,
			google_email VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_google_id ON users(google_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_google_mappings_user_id ON user_google_mappings(user_id)`,
	}
}

// MigrateGoogleAuth applies the Google OAuth linkage migration. Must run
// strictly after CreateTables.
func MigrateGoogleAuth(db *gorm.DB) error {
	if !HasUsersTable(db) {
		return ErrUsersTableMissing
	}
	for _, stmt := range googleAuthStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("google auth migration failed: %w", err)
		}
	}
	slog.Info("google auth migration complete")
	return nil
}

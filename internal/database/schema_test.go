package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The bootstrap runs without a transaction, so idempotence has to hold
// statement by statement: every object-creating statement must carry
// IF NOT EXISTS.
func TestSchemaStatementsAreIdempotent(t *testing.T) {
	for _, stmts := range [][]string{schemaStatements(), googleAuthStatements()} {
		for _, stmt := range stmts {
			switch {
			case strings.HasPrefix(stmt, "CREATE TABLE"),
				strings.HasPrefix(stmt, "CREATE INDEX"),
				strings.HasPrefix(stmt, "CREATE EXTENSION"):
				if !strings.Contains(stmt, "IF NOT EXISTS") {
					t.Fatalf("statement not idempotent: %s", stmt)
				}
			case strings.HasPrefix(stmt, "ALTER TABLE"):
				if !strings.Contains(stmt, "ADD COLUMN IF NOT EXISTS") {
					t.Fatalf("alter not idempotent: %s", stmt)
				}
			default:
				t.Fatalf("unexpected statement kind: %s", stmt)
			}
		}
	}
}

func TestSchemaCreatesRequiredTablesAndIndexes(t *testing.T) {
	all := strings.Join(schemaStatements(), "\n")

	for _, table := range []string{"users", "claims", "fraud_alerts", "user_google_mappings", "audit_logs", "system_logs"} {
		if !strings.Contains(all, "CREATE TABLE IF NOT EXISTS "+table+" ") &&
			!strings.Contains(all, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("missing table %s", table)
		}
	}

	for _, idx := range []string{
		"idx_users_email ON users(email)",
		"idx_users_username ON users(username)",
		"idx_claims_status ON claims(status)",
		"idx_claims_risk_level ON claims(risk_level)",
		"idx_fraud_alerts_severity ON fraud_alerts(severity)",
		"idx_audit_logs_user_id ON audit_logs(user_id)",
	} {
		if !strings.Contains(all, idx) {
			t.Fatalf("missing index %s", idx)
		}
	}
}

// UUID generation must be available before any table defaults to it.
func TestExtensionEnabledBeforeTables(t *testing.T) {
	stmts := schemaStatements()
	if !strings.HasPrefix(stmts[0], "CREATE EXTENSION IF NOT EXISTS pgcrypto") {
		t.Fatalf("first statement should enable pgcrypto, got: %s", stmts[0])
	}

	usersIdx, mappingIdx := -1, -1
	for i, s := range stmts {
		if strings.Contains(s, "CREATE TABLE IF NOT EXISTS users") {
			usersIdx = i
		}
		if strings.Contains(s, "CREATE TABLE IF NOT EXISTS user_google_mappings") {
			mappingIdx = i
		}
	}
	if usersIdx == -1 || mappingIdx == -1 || usersIdx > mappingIdx {
		t.Fatalf("users (%d) must be created before user_google_mappings (%d)", usersIdx, mappingIdx)
	}
}

func TestGoogleMigrationConstrainsAuthMethod(t *testing.T) {
	all := strings.Join(googleAuthStatements(), "\n")
	if !strings.Contains(all, "CHECK (auth_method IN ('local', 'google'))") {
		t.Fatalf("auth_method check constraint missing")
	}
	if !strings.Contains(all, "DEFAULT 'local'") {
		t.Fatalf("auth_method default missing")
	}
	if !strings.Contains(all, "ON DELETE CASCADE") {
		t.Fatalf("mapping cascade missing")
	}
}

func TestMigrateGoogleAuthRequiresUsersTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := MigrateGoogleAuth(db); !errors.Is(err, ErrUsersTableMissing) {
		t.Fatalf("expected ErrUsersTableMissing, got %v", err)
	}
}

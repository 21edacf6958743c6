package config

import (
	"fmt"
	"os"
)

// WriteEnvFile renders the complete environment configuration and writes it
// to path, replacing any existing file wholesale. Run by the setup
// subcommand after OAuth client registration.
func (c *Config) WriteEnvFile(path string) error {
	content := fmt.Sprintf(`# KMED environment configuration (generated by kmed-admin setup)

# Database
DB_HOST=%s
DB_PORT=%s
DB_USER=%s
DB_PASSWORD=%s
DB_NAME=%s
DB_SSLMODE=%s

# Token signing
JWT_SECRET=%s
JWT_ACCESS_EXPIRY=%s

# Google OAuth client
GOOGLE_CLIENT_ID=%s
GOOGLE_CLIENT_SECRET=%s

# URLs
FRONTEND_URL=%s
BACKEND_URL=%s

# Server
PORT=%s
CORS_ORIGINS=%s

# Login client
MOCK_LOGIN_ENABLED=%t
`,
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
		c.JWTSecret, c.JWTAccessExpiry,
		c.GoogleClientID, c.GoogleClientSecret,
		c.FrontendURL, c.BackendURL,
		c.Port, c.CORSOrigins,
		c.MockLoginEnabled,
	)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}

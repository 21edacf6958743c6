package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/kmed-health/kmed-backend/internal/models"
	"github.com/kmed-health/kmed-backend/internal/roles"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrBulkToPatient = errors.New("bulk change to patient is not allowed")
	ErrUserNotFound  = errors.New("user not found")
)

const (
	ActionRoleUpgrade     = "ROLE_UPGRADE"
	ActionBulkRoleUpgrade = "BULK_ROLE_UPGRADE"
)

// AdminService implements the role administration operations over
// Google-authenticated users. All mutations append an audit row to
// system_logs.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// GoogleUser is one row of the list view: the user joined to their Google
// mapping (mapping side may be absent for legacy rows).
type GoogleUser struct {
	models.User
	MappingGoogleID *string `json:"mapping_google_id"`
}

// ListGoogleUsers returns all Google-authenticated users, newest first.
func (s *AdminService) ListGoogleUsers() ([]GoogleUser, error) {
	var rows []GoogleUser
	err := s.db.Model(&models.User{}).
		Select("users.*, m.google_id AS mapping_google_id").
		Joins("LEFT JOIN user_google_mappings m ON m.user_id = users.id").
		Where("users.auth_method = ?", "google").
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list google users: %w", err)
	}
	return rows, nil
}

// UpgradeResult carries the updated user together with the role it held
// before the change.
type UpgradeResult struct {
	User    models.User
	OldRole string
}

// UpgradeRole changes one Google-authenticated user's role. The prior role
// is captured in the same transaction as the update so the audit entry
// records the true transition. Local accounts are never touched, even on
// an exact email match.
func (s *AdminService) UpgradeRole(email, newRole string) (*UpgradeResult, error) {
	if !roles.Valid(newRole) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, newRole)
	}

	var result UpgradeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ? AND auth_method = ?", email, "google").First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		oldRole := user.Role
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"role":       newRole,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		userID := user.ID.String()
		if err := s.appendAudit(tx, &userID, ActionRoleUpgrade, map[string]interface{}{
			"old_role":    oldRole,
			"new_role":    newRole,
			"upgraded_by": "admin_cli",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}

		result = UpgradeResult{User: user, OldRole: oldRole}
		result.User.Role = newRole
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkUpgradeRole applies newRole to every Google-authenticated user and
// returns the number of rows affected. Demoting everyone to patient is
// rejected.
func (s *AdminService) BulkUpgradeRole(newRole string) (int64, error) {
	if !roles.Valid(newRole) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, newRole)
	}
	if newRole == string(roles.Patient) {
		return 0, ErrBulkToPatient
	}

	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("auth_method = ?", "google").
			Updates(map[string]interface{}{
				"role":       newRole,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to bulk update roles: %w", res.Error)
		}
		affected = res.RowsAffected

		// Nil user_id marks the system actor.
		return s.appendAudit(tx, nil, ActionBulkRoleUpgrade, map[string]interface{}{
			"new_role":      newRole,
			"users_updated": affected,
		})
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// RoleStat is one entry of the role distribution.
type RoleStat struct {
	Role       string  `json:"role"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RoleStats computes the role distribution over the Google-user
// population, ordered by count descending. An empty population yields an
// empty distribution and total 0.
func (s *AdminService) RoleStats() ([]RoleStat, int64, error) {
	var stats []RoleStat
	err := s.db.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Where("auth_method = ?", "google").
		Group("role").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to compute role stats: %w", err)
	}

	var total int64
	for _, st := range stats {
		total += st.Count
	}
	for i := range stats {
		stats[i].Percentage = math.Round(float64(stats[i].Count)/float64(total)*1000) / 10
	}
	return stats, total, nil
}

func (s *AdminService) appendAudit(tx *gorm.DB, userID *string, action string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}
	entry := models.SystemLog{
		ID:      uuid.New(),
		UserID:  userID,
		Action:  action,
		Details: datatypes.JSON(payload),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

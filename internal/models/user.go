package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a KMED account. Google-authenticated users additionally carry a
// row in user_google_mappings; auth_method = 'google' implies that row
// exists.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string    `gorm:"size:100;not null;uniqueIndex:idx_users_username" json:"username"`
	Email         string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Password      string    `gorm:"size:255" json:"-"`
	Role          string    `gorm:"size:20;not null;default:'patient'" json:"role"`
	FirstName     string    `gorm:"size:100" json:"first_name"`
	LastName      string    `gorm:"size:100" json:"last_name"`
	AuthMethod    string    `gorm:"size:20;default:'local'" json:"auth_method"`
	GoogleID      *string   `gorm:"size:255" json:"google_id,omitempty"`
	GoogleEmail   *string   `gorm:"size:255" json:"google_email,omitempty"`
	GoogleName    *string   `gorm:"size:255" json:"google_name,omitempty"`
	GooglePicture *string   `gorm:"size:512" json:"google_picture,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

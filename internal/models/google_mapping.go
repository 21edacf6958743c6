package models

import (
	"time"

	"github.com/google/uuid"
)

// GoogleMapping links an internal user to their external Google identity.
// It is always the owned side: rows are created by the OAuth callback flow
// and removed by the users FK cascade, never mutated here.
type GoogleMapping struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_google_mappings_user_id" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	GoogleID    string    `gorm:"size:255;not null;uniqueIndex" json:"google_id"`
	GoogleEmail string    `gorm:"size:255;not null;uniqueIndex" json:"google_email"`
	CreatedAt   time.Time `json:"created_at"`
}

func (GoogleMapping) TableName() string {
	return "user_google_mappings"
}

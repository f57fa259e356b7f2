package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Store is a tenant's connected commerce account. The access credential is
// opaque here; credential exchange lives in the platform connector.
type Store struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Domain      string            `gorm:"not null;uniqueIndex" json:"domain"`
	Platform    string            `gorm:"not null;index" json:"platform"`
	Name        string            `json:"name,omitempty"`
	AccessToken string            `gorm:"column:access_token" json:"-"`
	Metadata    datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

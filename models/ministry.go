package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MinistryAccount represents the ministry_accounts table
type MinistryAccount struct {
	ID            string     `gorm:"primaryKey;column:id" json:"id"`
	Email         string     `gorm:"column:email;uniqueIndex" json:"email"`
	Name          string     `gorm:"column:name" json:"name"`
	MinistryName  string     `gorm:"column:ministry_name" json:"ministry_name"`
	WalletAddress *string    `gorm:"column:wallet_address" json:"wallet_address,omitempty"`
	Password      string     `gorm:"column:password" json:"-"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for MinistryAccount
func (MinistryAccount) TableName() string {
	return "ministry_accounts"
}

func (m *MinistryAccount) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

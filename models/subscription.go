package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification frequency options for watchlist subscriptions.
const (
	NotifyInstant = "instant"
	NotifyDaily   = "daily"
	NotifyWeekly  = "weekly"
)

// ProjectSubscription represents the project_subscriptions table. Removing a
// project from a watchlist deactivates the row instead of deleting it so the
// subscription history survives re-subscribes.
type ProjectSubscription struct {
	ID                    string     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID             string     `gorm:"column:project_id;uniqueIndex:uniq_subscriptions_project_email" json:"project_id"`
	Email                 string     `gorm:"column:email;uniqueIndex:uniq_subscriptions_project_email" json:"email"`
	Name                  string     `gorm:"column:name" json:"name"`
	NotificationFrequency string     `gorm:"column:notification_frequency" json:"notification_frequency"`
	IsActive              bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for ProjectSubscription
func (ProjectSubscription) TableName() string {
	return "project_subscriptions"
}

func (s *ProjectSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.NotificationFrequency == "" {
		s.NotificationFrequency = NotifyInstant
	}
	return nil
}

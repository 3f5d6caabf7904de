package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents the comments table. A comment targets either a project
// or a milestone, never both; replies point at their parent comment.
type Comment struct {
	ID              string     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID       *string    `gorm:"column:project_id;index" json:"project_id"`
	MilestoneID     *string    `gorm:"column:milestone_id;index" json:"milestone_id"`
	ParentCommentID *string    `gorm:"column:parent_comment_id;index" json:"parent_comment_id"`
	AuthorEmail     string     `gorm:"column:author_email;index" json:"author_email"`
	AuthorName      string     `gorm:"column:author_name" json:"author_name"`
	Content         string     `gorm:"column:content" json:"content"`
	IsHidden        bool       `gorm:"column:is_hidden" json:"is_hidden"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

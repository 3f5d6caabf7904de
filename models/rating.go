package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRating represents the project_ratings table. The unique index on
// (project_id, email) makes the database the arbiter of the one-rating-per-
// rater rule; concurrent submissions resolve to a single row via upsert.
type ProjectRating struct {
	ID        string     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID string     `gorm:"column:project_id;uniqueIndex:uniq_project_ratings_project_email" json:"project_id"`
	Email     string     `gorm:"column:email;uniqueIndex:uniq_project_ratings_project_email" json:"email"`
	Name      string     `gorm:"column:name" json:"name"`
	Rating    int        `gorm:"column:rating" json:"rating"`
	Comment   *string    `gorm:"column:comment" json:"comment"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for ProjectRating
func (ProjectRating) TableName() string {
	return "project_ratings"
}

func (r *ProjectRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

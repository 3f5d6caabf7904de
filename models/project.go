package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project status values. A project starts as a draft, becomes visible to the
// public once published, and may later be marked completed.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
	ProjectStatusCompleted = "completed"
)

// Project represents the projects table. Budget figures are stored in the
// smallest currency unit as 64-bit integers.
type Project struct {
	ID             string     `gorm:"primaryKey;column:id" json:"id"`
	MinistryID     string     `gorm:"column:ministry_id;index" json:"ministry_id"`
	Title          string     `gorm:"column:title" json:"title"`
	Description    *string    `gorm:"column:description" json:"description"`
	RecipientName  string     `gorm:"column:recipient_name;index" json:"recipient_name"`
	RecipientType  *string    `gorm:"column:recipient_type" json:"recipient_type"`
	TotalAmount    int64      `gorm:"column:total_amount" json:"total_amount"`
	TotalAllocated int64      `gorm:"column:total_allocated" json:"total_allocated"`
	TotalReleased  int64      `gorm:"column:total_released" json:"total_released"`
	Status         string     `gorm:"column:status;index" json:"status"`
	BlockchainID   *string    `gorm:"column:blockchain_id" json:"blockchain_id"`
	ChainAccount   *string    `gorm:"column:chain_account" json:"chain_account"`
	CreationTx     *string    `gorm:"column:creation_tx" json:"creation_tx"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Ministry   MinistryAccount `gorm:"foreignKey:MinistryID;references:ID" json:"-"`
	Milestones []Milestone     `gorm:"foreignKey:ProjectID;references:ID" json:"milestones,omitempty"`
	Ratings    []ProjectRating `gorm:"foreignKey:ProjectID;references:ID" json:"-"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Milestone represents the milestones table. Each milestone carves a slice
// out of its project's budget and is independently released.
type Milestone struct {
	ID          string     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID   string     `gorm:"column:project_id;uniqueIndex:uniq_milestones_project_index" json:"project_id"`
	Index       int        `gorm:"column:milestone_index;uniqueIndex:uniq_milestones_project_index" json:"index"`
	Description string     `gorm:"column:description" json:"description"`
	Amount      int64      `gorm:"column:amount" json:"amount"`
	IsReleased  bool       `gorm:"column:is_released" json:"is_released"`
	ReleaseTx   *string    `gorm:"column:release_tx" json:"release_tx"`
	ProofURL    *string    `gorm:"column:proof_url" json:"proof_url"`
	ReleasedAt  *time.Time `gorm:"column:released_at" json:"released_at"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for Milestone
func (Milestone) TableName() string {
	return "milestones"
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

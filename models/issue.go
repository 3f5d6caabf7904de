package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue type and severity values accepted from citizen reports.
const (
	IssueTypeBudgetMismatch  = "budget_mismatch"
	IssueTypeMissingProof    = "missing_proof"
	IssueTypeDelayedRelease  = "delayed_release"
	IssueTypeFraudulentClaim = "fraudulent_claim"
	IssueTypeOther           = "other"

	IssueSeverityLow      = "low"
	IssueSeverityMedium   = "medium"
	IssueSeverityHigh     = "high"
	IssueSeverityCritical = "critical"

	IssueStatusOpen          = "open"
	IssueStatusInvestigating = "investigating"
	IssueStatusResolved      = "resolved"
	IssueStatusDismissed     = "dismissed"
)

// Issue represents the issues table
type Issue struct {
	ID            string     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID     string     `gorm:"column:project_id;index" json:"project_id"`
	MilestoneID   *string    `gorm:"column:milestone_id;index" json:"milestone_id"`
	ReporterEmail string     `gorm:"column:reporter_email;index" json:"reporter_email"`
	ReporterName  string     `gorm:"column:reporter_name" json:"reporter_name"`
	IssueType     string     `gorm:"column:issue_type" json:"issue_type"`
	Title         string     `gorm:"column:title" json:"title"`
	Description   string     `gorm:"column:description" json:"description"`
	Severity      string     `gorm:"column:severity" json:"severity"`
	Status        string     `gorm:"column:status" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for Issue
func (Issue) TableName() string {
	return "issues"
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Severity == "" {
		i.Severity = IssueSeverityMedium
	}
	if i.Status == "" {
		i.Status = IssueStatusOpen
	}
	return nil
}

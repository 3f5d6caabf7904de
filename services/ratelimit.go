package services

import (
	"fmt"
	"time"

	"openbudget-api/models"

	"gorm.io/gorm"
)

const (
	rateLimitMaxActions = 5
	rateLimitWindow     = 24 * time.Hour
)

// RateLimiter enforces the shared throttling policy for user-generated
// content: at most 5 submissions per identity in a sliding 24-hour window,
// counted from stored rows rather than a token bucket.
type RateLimiter struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRateLimiter(db *gorm.DB) *RateLimiter {
	return &RateLimiter{db: db, now: time.Now}
}

// CheckComment returns ErrRateLimitExceeded when the author already has 5 or
// more comments inside the trailing 24 hours.
func (l *RateLimiter) CheckComment(authorEmail string) error {
	var count int64
	err := l.db.Model(&models.Comment{}).
		Where("author_email = ? AND created_at > ?", authorEmail, l.windowStart()).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: count comments: %v", ErrDependencyFailure, err)
	}
	if count >= rateLimitMaxActions {
		return ErrRateLimitExceeded
	}
	return nil
}

// CheckIssue applies the same window policy to issue reports.
func (l *RateLimiter) CheckIssue(reporterEmail string) error {
	var count int64
	err := l.db.Model(&models.Issue{}).
		Where("reporter_email = ? AND created_at > ?", reporterEmail, l.windowStart()).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: count issues: %v", ErrDependencyFailure, err)
	}
	if count >= rateLimitMaxActions {
		return ErrRateLimitExceeded
	}
	return nil
}

func (l *RateLimiter) windowStart() time.Time {
	return l.now().UTC().Add(-rateLimitWindow)
}

package services

import (
	"fmt"
	"testing"
	"time"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBlocksSixthComment(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, "p1")

	now := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(db)
	limiter.now = func() time.Time { return now }

	projectID := "p1"
	for i := 0; i < rateLimitMaxActions; i++ {
		comment := models.Comment{
			ID:          fmt.Sprintf("c%d", i),
			ProjectID:   &projectID,
			AuthorEmail: "busy@example.com",
			AuthorName:  "Busy",
			Content:     "comment",
			CreatedAt:   now.Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Create(&comment).Error)
	}

	assert.ErrorIs(t, limiter.CheckComment("busy@example.com"), ErrRateLimitExceeded)
	assert.NoError(t, limiter.CheckComment("other@example.com"))
}

func TestRateLimiterIgnoresActionsOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, "p1")

	now := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(db)
	limiter.now = func() time.Time { return now }

	projectID := "p1"
	for i := 0; i < rateLimitMaxActions; i++ {
		comment := models.Comment{
			ID:          fmt.Sprintf("old%d", i),
			ProjectID:   &projectID,
			AuthorEmail: "busy@example.com",
			AuthorName:  "Busy",
			Content:     "comment",
			CreatedAt:   now.Add(-25 * time.Hour),
		}
		require.NoError(t, db.Create(&comment).Error)
	}

	assert.NoError(t, limiter.CheckComment("busy@example.com"))
}

func TestRateLimiterUnderLimitAllows(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, "p1")

	now := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(db)
	limiter.now = func() time.Time { return now }

	projectID := "p1"
	for i := 0; i < rateLimitMaxActions-1; i++ {
		comment := models.Comment{
			ID:          fmt.Sprintf("c%d", i),
			ProjectID:   &projectID,
			AuthorEmail: "busy@example.com",
			AuthorName:  "Busy",
			Content:     "comment",
			CreatedAt:   now.Add(-time.Hour),
		}
		require.NoError(t, db.Create(&comment).Error)
	}

	assert.NoError(t, limiter.CheckComment("busy@example.com"))
}

func TestRateLimiterCountsIssuesSeparately(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, "p1")

	now := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(db)
	limiter.now = func() time.Time { return now }

	for i := 0; i < rateLimitMaxActions; i++ {
		issue := models.Issue{
			ID:            fmt.Sprintf("i%d", i),
			ProjectID:     "p1",
			ReporterEmail: "watchdog@example.com",
			ReporterName:  "Watchdog",
			IssueType:     models.IssueTypeDelayedRelease,
			Title:         "Slow release",
			Description:   "Milestone overdue by months",
			CreatedAt:     now.Add(-time.Hour),
		}
		require.NoError(t, db.Create(&issue).Error)
	}

	assert.ErrorIs(t, limiter.CheckIssue("watchdog@example.com"), ErrRateLimitExceeded)
	// Issue volume does not throttle comments for the same identity
	assert.NoError(t, limiter.CheckComment("watchdog@example.com"))
}

package services

import (
	"context"
	"testing"
	"time"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectLeaderboardLoadsAndRanks(t *testing.T) {
	db := newTestDB(t)

	strong := models.Project{
		ID: "strong", MinistryID: "m1", Title: "Strong", RecipientName: "Ministry A",
		TotalAmount: 1000, TotalReleased: 900, Status: models.ProjectStatusPublished,
		CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	weak := models.Project{
		ID: "weak", MinistryID: "m2", Title: "Weak", RecipientName: "Ministry B",
		TotalAmount: 1000, TotalReleased: 100, Status: models.ProjectStatusPublished,
		CreatedAt: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	draft := models.Project{
		ID: "hidden", MinistryID: "m3", Title: "Hidden", RecipientName: "Ministry C",
		TotalAmount: 1000, TotalReleased: 1000, Status: models.ProjectStatusDraft,
	}
	require.NoError(t, db.Create(&strong).Error)
	require.NoError(t, db.Create(&weak).Error)
	require.NoError(t, db.Create(&draft).Error)

	require.NoError(t, db.Create(&models.Milestone{
		ID: "ms1", ProjectID: "strong", Index: 0, Description: "Phase 1",
		Amount: 900, IsReleased: true,
	}).Error)
	require.NoError(t, db.Create(&models.ProjectRating{
		ID: "r1", ProjectID: "strong", Email: "a@b.c", Name: "A", Rating: 5,
	}).Error)

	svc := NewAnalyticsService(db)
	ranked, err := svc.ProjectLeaderboard()
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "strong", ranked[0].Project.ID)
	assert.Equal(t, "weak", ranked[1].Project.ID)

	assert.Equal(t, 100.0, ranked[0].Metrics.CompletionRate)
	assert.Equal(t, 90.0, ranked[0].Metrics.BudgetAccuracy)
	require.NotNil(t, ranked[0].Metrics.AvgTrustScore)
	assert.Equal(t, 5.0, *ranked[0].Metrics.AvgTrustScore)
}

func TestProjectLeaderboardEmptyStore(t *testing.T) {
	svc := NewAnalyticsService(newTestDB(t))

	ranked, err := svc.ProjectLeaderboard()
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestProjectMetricsByID(t *testing.T) {
	db := newTestDB(t)
	createTestProject(t, db, "p1")

	svc := NewAnalyticsService(db)
	ranked, err := svc.ProjectMetricsByID("p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", ranked.Project.ID)
	assert.Nil(t, ranked.Metrics.AvgTrustScore)

	_, err = svc.ProjectMetricsByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrendsFiltersByMinistry(t *testing.T) {
	db := newTestDB(t)

	transport := models.Project{
		ID: "p1", MinistryID: "m1", Title: "Road", RecipientName: "Ministry of Transport",
		TotalAmount: 500, Status: models.ProjectStatusPublished,
		CreatedAt: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	health := models.Project{
		ID: "p2", MinistryID: "m2", Title: "Clinic", RecipientName: "Ministry of Health",
		TotalAmount: 700, Status: models.ProjectStatusPublished,
		CreatedAt: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&transport).Error)
	require.NoError(t, db.Create(&health).Error)

	svc := NewAnalyticsService(db)
	buckets, err := svc.Trends(TrendQuery{Granularity: GranularityMonthly, Ministry: "Ministry of Health"})
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].ProjectCount)
	assert.Equal(t, "700", buckets[0].TotalBudget)
}

func TestMinistryLeaderboardScoresAllFourFactors(t *testing.T) {
	db := newTestDB(t)

	// Stand-in for the materialized view the production store maintains
	require.NoError(t, db.Exec(`CREATE TABLE ministry_performance (
		ministry TEXT,
		total_projects INTEGER,
		completed_projects INTEGER,
		completion_rate REAL,
		total_budget INTEGER,
		total_released INTEGER,
		budget_accuracy REAL,
		release_rate REAL,
		avg_trust_score REAL,
		total_ratings INTEGER,
		last_project_date DATETIME
	)`).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO ministry_performance (ministry, total_projects, completed_projects, completion_rate, total_budget, total_released, budget_accuracy, release_rate, avg_trust_score, total_ratings) VALUES
		('Transport', 4, 1, 25.0, 1000000, 250000, 25.0, 25.0, 4.5, 2),
		('Health', 2, 2, 100.0, 500000, 500000, 100.0, 100.0, 5.0, 10)`).Error)

	svc := NewPerformanceService(db, nil)
	rows, err := svc.MinistryLeaderboard(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Health", rows[0].Ministry)
	// 0.25*100 + 0.30*100 + 0.25*100 + 0.20*100
	assert.Equal(t, 100.0, rows[0].OverallScore)
	// 0.25*25 + 0.30*25 + 0.25*25 + 0.20*90
	assert.Equal(t, 38.0, rows[1].OverallScore)
}

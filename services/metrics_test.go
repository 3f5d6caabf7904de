package services

import (
	"fmt"
	"testing"
	"time"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratingRows(values ...int) []models.ProjectRating {
	out := make([]models.ProjectRating, 0, len(values))
	for i, v := range values {
		out = append(out, models.ProjectRating{
			ID:     fmt.Sprintf("rating-%d", i),
			Rating: v,
		})
	}
	return out
}

func TestComputeProjectMetricsWorkedExample(t *testing.T) {
	project := models.Project{
		ID:            "p1",
		TotalAmount:   1_000_000,
		TotalReleased: 250_000,
	}
	milestones := []models.Milestone{
		{ID: "m1", IsReleased: true},
		{ID: "m2"},
		{ID: "m3"},
		{ID: "m4"},
	}

	metrics, err := ComputeProjectMetrics(project, milestones, ratingRows(5, 4))
	require.NoError(t, err)

	assert.Equal(t, 25.0, metrics.CompletionRate)
	assert.Equal(t, 25.0, metrics.BudgetAccuracy)
	require.NotNil(t, metrics.AvgTrustScore)
	assert.Equal(t, 4.5, *metrics.AvgTrustScore)
	// 0.25*25 + 0.30*25 + 0.25*25 + 0.20*90
	assert.Equal(t, 38.0, metrics.OverallScore)
	assert.Equal(t, 4, metrics.TotalMilestones)
	assert.Equal(t, 1, metrics.ReleasedMilestones)
	assert.Equal(t, 2, metrics.TotalRatings)
}

func TestComputeProjectMetricsNoMilestones(t *testing.T) {
	metrics, err := ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: 100}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.CompletionRate)
	assert.Equal(t, 0, metrics.TotalMilestones)
}

func TestComputeProjectMetricsZeroBudget(t *testing.T) {
	metrics, err := ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: 0}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.BudgetAccuracy)
	assert.Equal(t, 0.0, metrics.OverallScore)
}

func TestComputeProjectMetricsNoRatingsKeepsTrustNil(t *testing.T) {
	metrics, err := ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: 100}, nil, nil)
	require.NoError(t, err)

	assert.Nil(t, metrics.AvgTrustScore)
	assert.Equal(t, 0, metrics.TotalRatings)
}

func TestComputeProjectMetricsOverDisbursementNotClamped(t *testing.T) {
	project := models.Project{ID: "p1", TotalAmount: 100, TotalReleased: 150}

	metrics, err := ComputeProjectMetrics(project, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 150.0, metrics.BudgetAccuracy)
}

func TestComputeProjectMetricsRejectsCorruptInput(t *testing.T) {
	_, err := ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: -1}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidMetricInput)

	_, err = ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: 100}, []models.Milestone{
		{ID: "m1", Amount: -5},
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidMetricInput)

	_, err = ComputeProjectMetrics(models.Project{ID: "p1", TotalAmount: 100}, nil, ratingRows(6))
	assert.ErrorIs(t, err, ErrInvalidMetricInput)
}

func TestRankLeaderboardOrderingAndCap(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	projects := make([]models.Project, 0, 40)
	for i := 0; i < 40; i++ {
		projects = append(projects, models.Project{
			ID:            fmt.Sprintf("p%d", i),
			Status:        models.ProjectStatusPublished,
			TotalAmount:   1000,
			TotalReleased: int64(i * 25), // distinct scores
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}

	ranked, err := RankLeaderboard(projects, nil, nil)
	require.NoError(t, err)

	assert.Len(t, ranked, LeaderboardMaxEntries)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Metrics.OverallScore, ranked[i].Metrics.OverallScore)
	}
	// Highest released fraction ranks first
	assert.Equal(t, "p39", ranked[0].Project.ID)
}

func TestRankLeaderboardExcludesUnpublished(t *testing.T) {
	projects := []models.Project{
		{ID: "draft", Status: models.ProjectStatusDraft, TotalAmount: 100, TotalReleased: 100},
		{ID: "pub", Status: models.ProjectStatusPublished, TotalAmount: 100, TotalReleased: 50},
	}

	ranked, err := RankLeaderboard(projects, nil, nil)
	require.NoError(t, err)

	require.Len(t, ranked, 1)
	assert.Equal(t, "pub", ranked[0].Project.ID)
}

func TestRankLeaderboardTieBreaksByCreation(t *testing.T) {
	earlier := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(48 * time.Hour)

	projects := []models.Project{
		{ID: "younger", Status: models.ProjectStatusPublished, TotalAmount: 100, TotalReleased: 50, CreatedAt: later},
		{ID: "older", Status: models.ProjectStatusPublished, TotalAmount: 100, TotalReleased: 50, CreatedAt: earlier},
	}

	ranked, err := RankLeaderboard(projects, nil, nil)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "older", ranked[0].Project.ID)
}

package services

import (
	"math"
	"testing"
	"time"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTrendsMonthly(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, TotalAmount: 100, TotalReleased: 10,
			CreatedAt: time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)},
		{ID: "p2", Status: models.ProjectStatusPublished, TotalAmount: 200, TotalReleased: 20,
			CreatedAt: time.Date(2025, time.January, 28, 23, 59, 0, 0, time.UTC)},
		{ID: "p3", Status: models.ProjectStatusCompleted, TotalAmount: 300, TotalReleased: 300,
			CreatedAt: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := BucketTrends(projects, GranularityMonthly)
	require.Len(t, buckets, 2) // February is omitted, not zero-filled

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), buckets[0].Period)
	assert.Equal(t, 2, buckets[0].ProjectCount)
	assert.Equal(t, "300", buckets[0].TotalBudget)
	assert.Equal(t, "30", buckets[0].TotalReleased)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), buckets[1].Period)
	assert.Equal(t, 1, buckets[1].ProjectCount)
}

func TestBucketTrendsYearly(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, TotalAmount: 100,
			CreatedAt: time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)},
		{ID: "p2", Status: models.ProjectStatusPublished, TotalAmount: 100,
			CreatedAt: time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC)},
	}

	buckets := BucketTrends(projects, GranularityYearly)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), buckets[0].Period)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), buckets[1].Period)
}

func TestBucketTrendsExcludesDrafts(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusDraft, TotalAmount: 100,
			CreatedAt: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}

	assert.Empty(t, BucketTrends(projects, GranularityMonthly))
}

func TestBucketTrendsBucketsInUTC(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	// Local midnight on Feb 1 is still January in UTC
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, TotalAmount: 100,
			CreatedAt: time.Date(2025, time.February, 1, 2, 0, 0, 0, bangkok)},
	}

	buckets := BucketTrends(projects, GranularityMonthly)
	require.Len(t, buckets, 1)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), buckets[0].Period)
}

func TestBucketTrendsSumsBeyondFloatPrecision(t *testing.T) {
	// Two near-max budgets overflow int64 tracking in a float64; the string
	// sum must stay exact.
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, TotalAmount: math.MaxInt64,
			CreatedAt: time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Status: models.ProjectStatusPublished, TotalAmount: math.MaxInt64,
			CreatedAt: time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)},
	}

	buckets := BucketTrends(projects, GranularityMonthly)
	require.Len(t, buckets, 1)
	assert.Equal(t, "18446744073709551614", buckets[0].TotalBudget)
}

func TestBucketTrendsUnknownGranularityFallsBackToMonthly(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, TotalAmount: 100,
			CreatedAt: time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)},
	}

	buckets := BucketTrends(projects, "weekly")
	require.Len(t, buckets, 1)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), buckets[0].Period)
}

func TestBucketTrendsCountMatchesInput(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Status: models.ProjectStatusPublished, CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Status: models.ProjectStatusCompleted, CreatedAt: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p3", Status: models.ProjectStatusDraft, CreatedAt: time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "p4", Status: models.ProjectStatusPublished, CreatedAt: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)},
	}

	total := 0
	for _, b := range BucketTrends(projects, GranularityMonthly) {
		total += b.ProjectCount
	}
	assert.Equal(t, 3, total)
}

package services

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"openbudget-api/models"
)

// Trend granularities.
const (
	GranularityMonthly = "monthly"
	GranularityYearly  = "yearly"
)

// TrendBucket aggregates the projects created in one calendar period.
// Budget sums are decimal strings: national budget figures overflow the safe
// range of a 64-bit float, so they are accumulated with big.Int and never
// pass through a float.
type TrendBucket struct {
	Period        time.Time `json:"period"`
	ProjectCount  int       `json:"project_count"`
	TotalBudget   string    `json:"total_budget"`
	TotalReleased string    `json:"total_released"`
}

// TrendQuery selects the bucketing granularity and an optional recipient
// (ministry) filter. Unknown granularities fall back to monthly, matching
// the public API's historical behaviour.
type TrendQuery struct {
	Granularity string
	Ministry    string
}

// Trends buckets the non-draft projects by calendar period. Buckets with no
// projects are omitted; callers needing a gapless timeline fill client-side.
func (s *AnalyticsService) Trends(q TrendQuery) ([]TrendBucket, error) {
	query := s.db.Where("status <> ?", models.ProjectStatusDraft)
	if q.Ministry != "" {
		query = query.Where("recipient_name = ?", q.Ministry)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("%w: load projects: %v", ErrDependencyFailure, err)
	}

	return BucketTrends(projects, q.Granularity), nil
}

// BucketTrends groups projects into sparse calendar buckets in UTC, sorted
// ascending by period start. Pure function of its inputs.
func BucketTrends(projects []models.Project, granularity string) []TrendBucket {
	type accumulator struct {
		count    int
		budget   *big.Int
		released *big.Int
	}

	buckets := make(map[time.Time]*accumulator)
	for _, p := range projects {
		if p.Status == models.ProjectStatusDraft {
			continue
		}

		start := truncatePeriod(p.CreatedAt.UTC(), granularity)
		acc, ok := buckets[start]
		if !ok {
			acc = &accumulator{budget: new(big.Int), released: new(big.Int)}
			buckets[start] = acc
		}
		acc.count++
		acc.budget.Add(acc.budget, big.NewInt(p.TotalAmount))
		acc.released.Add(acc.released, big.NewInt(p.TotalReleased))
	}

	starts := make([]time.Time, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	result := make([]TrendBucket, 0, len(starts))
	for _, start := range starts {
		acc := buckets[start]
		result = append(result, TrendBucket{
			Period:        start,
			ProjectCount:  acc.count,
			TotalBudget:   acc.budget.String(),
			TotalReleased: acc.released.String(),
		})
	}

	return result
}

func truncatePeriod(t time.Time, granularity string) time.Time {
	if granularity == GranularityYearly {
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

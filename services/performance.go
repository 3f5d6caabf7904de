package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache keys for analytics responses invalidated on refresh.
const (
	MinistryLeaderboardCacheKey = "analytics:ministry-leaderboard"
	ProjectLeaderboardCacheKey  = "analytics:project-leaderboard"

	leaderboardCacheTTL = 5 * time.Minute
)

// MinistryPerformance mirrors one row of the ministry_performance
// materialized view maintained by the store.
type MinistryPerformance struct {
	Ministry          string     `gorm:"column:ministry" json:"ministry"`
	TotalProjects     int        `gorm:"column:total_projects" json:"total_projects"`
	CompletedProjects int        `gorm:"column:completed_projects" json:"completed_projects"`
	CompletionRate    float64    `gorm:"column:completion_rate" json:"completion_rate"`
	TotalBudget       int64      `gorm:"column:total_budget" json:"total_budget"`
	TotalReleased     int64      `gorm:"column:total_released" json:"total_released"`
	BudgetAccuracy    float64    `gorm:"column:budget_accuracy" json:"budget_accuracy"`
	ReleaseRate       float64    `gorm:"column:release_rate" json:"release_rate"`
	AvgTrustScore     float64    `gorm:"column:avg_trust_score" json:"avg_trust_score"`
	TotalRatings      int        `gorm:"column:total_ratings" json:"total_ratings"`
	LastProjectDate   *time.Time `gorm:"column:last_project_date" json:"last_project_date"`
	OverallScore      float64    `gorm:"-" json:"overall_score"`
}

// PerformanceService owns the ministry_performance aggregate: the explicit,
// independently invocable refresh plus the ranked read over it.
type PerformanceService struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewPerformanceService(db *gorm.DB, cache *redis.Client) *PerformanceService {
	return &PerformanceService{db: db, cache: cache}
}

// Refresh recomputes the ministry_performance materialized view. Calling it
// repeatedly without intervening data changes has the same effect as calling
// it once, and concurrent invocations are serialized by the store.
func (s *PerformanceService) Refresh(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("SELECT refresh_ministry_performance()").Error; err != nil {
		return fmt.Errorf("%w: refresh_ministry_performance: %v", ErrDependencyFailure, err)
	}

	// Cached leaderboard responses are stale after a refresh. Best effort;
	// the TTL bounds staleness if Redis is down.
	if s.cache != nil {
		s.cache.Del(ctx, MinistryLeaderboardCacheKey, ProjectLeaderboardCacheKey)
	}

	return nil
}

// MinistryLeaderboard reads the aggregate rows and scores them. Unlike the
// per-project formula, the ministry view carries a distinct release_rate
// factor, so all four weights apply to different inputs here.
func (s *PerformanceService) MinistryLeaderboard(ctx context.Context) ([]MinistryPerformance, error) {
	var rows []MinistryPerformance
	if err := s.db.WithContext(ctx).Table("ministry_performance").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: load ministry_performance: %v", ErrDependencyFailure, err)
	}

	for i := range rows {
		rows[i].OverallScore = round2(
			rows[i].CompletionRate*weightCompletion +
				rows[i].BudgetAccuracy*weightBudgetAccuracy +
				rows[i].ReleaseRate*weightReleaseRate +
				rows[i].AvgTrustScore*trustScale*weightTrust)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OverallScore > rows[j].OverallScore
	})
	return rows, nil
}

// CacheTTL returns the leaderboard cache lifetime.
func CacheTTL() time.Duration {
	return leaderboardCacheTTL
}

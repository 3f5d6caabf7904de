package services

import (
	"fmt"
	"math"
	"sort"

	"openbudget-api/models"

	"gorm.io/gorm"
)

// Overall-score weights. The second budget term occupies the slot the
// ministry-level formula gives to release rate; at project level release
// rate and budget accuracy are the same ratio, so the term is kept as a
// separate weight rather than folded into one 0.55 factor.
const (
	weightCompletion      = 0.25
	weightBudgetAccuracy  = 0.30
	weightReleaseRate     = 0.25
	weightTrust           = 0.20
	trustScale            = 20 // normalize 1-5 rating to 0-100
	LeaderboardMaxEntries = 30
)

// ProjectMetrics is derived per project on read and never persisted.
type ProjectMetrics struct {
	CompletionRate     float64  `json:"completion_rate"`
	BudgetAccuracy     float64  `json:"budget_accuracy"`
	AvgTrustScore      *float64 `json:"avg_trust_score"`
	OverallScore       float64  `json:"overall_score"`
	TotalMilestones    int      `json:"total_milestones"`
	ReleasedMilestones int      `json:"released_milestones"`
	TotalRatings       int      `json:"total_ratings"`
}

// RankedProject pairs a project with its computed metrics for leaderboard
// output.
type RankedProject struct {
	Project models.Project `json:"project"`
	Metrics ProjectMetrics `json:"metrics"`
}

// ComputeProjectMetrics derives the scoring metrics for a single project
// from rows already loaded from the store. Pure function; the only failure
// mode is corrupt numeric source data.
//
// AvgTrustScore is nil when the project has no ratings; "no ratings yet" and
// "rated zero" are different states and callers must not conflate them.
func ComputeProjectMetrics(project models.Project, milestones []models.Milestone, ratings []models.ProjectRating) (ProjectMetrics, error) {
	if project.TotalAmount < 0 || project.TotalReleased < 0 {
		return ProjectMetrics{}, fmt.Errorf("%w: project %s has negative budget figures", ErrInvalidMetricInput, project.ID)
	}

	var metrics ProjectMetrics
	metrics.TotalMilestones = len(milestones)
	for _, m := range milestones {
		if m.Amount < 0 {
			return ProjectMetrics{}, fmt.Errorf("%w: milestone %s has negative amount", ErrInvalidMetricInput, m.ID)
		}
		if m.IsReleased {
			metrics.ReleasedMilestones++
		}
	}

	if metrics.TotalMilestones > 0 {
		metrics.CompletionRate = float64(metrics.ReleasedMilestones) / float64(metrics.TotalMilestones) * 100
	}

	// Budget accuracy is intentionally not clamped when released exceeds the
	// total budget; over-disbursement shows up as a score above 100.
	if project.TotalAmount > 0 {
		metrics.BudgetAccuracy = round2(float64(project.TotalReleased) / float64(project.TotalAmount) * 100)
	}

	metrics.TotalRatings = len(ratings)
	if len(ratings) > 0 {
		var sum int
		for _, r := range ratings {
			if r.Rating < 1 || r.Rating > 5 {
				return ProjectMetrics{}, fmt.Errorf("%w: rating %s has value %d outside 1-5", ErrInvalidMetricInput, r.ID, r.Rating)
			}
			sum += r.Rating
		}
		avg := round2(float64(sum) / float64(len(ratings)))
		metrics.AvgTrustScore = &avg
	}

	trustComponent := 0.0
	if metrics.AvgTrustScore != nil {
		trustComponent = *metrics.AvgTrustScore * trustScale
	}

	metrics.OverallScore = round2(
		metrics.CompletionRate*weightCompletion +
			metrics.BudgetAccuracy*weightBudgetAccuracy +
			metrics.BudgetAccuracy*weightReleaseRate +
			trustComponent*weightTrust)

	if !isFinite(metrics.OverallScore) {
		return ProjectMetrics{}, fmt.Errorf("%w: project %s produced a non-finite score", ErrInvalidMetricInput, project.ID)
	}

	return metrics, nil
}

// RankLeaderboard computes metrics for the published projects and returns
// them ordered by overall score, best first. Ties keep the earliest-created
// project first so the ordering is deterministic. Output is capped at
// LeaderboardMaxEntries.
func RankLeaderboard(projects []models.Project, milestonesByProject map[string][]models.Milestone, ratingsByProject map[string][]models.ProjectRating) ([]RankedProject, error) {
	ranked := make([]RankedProject, 0, len(projects))
	for _, p := range projects {
		if p.Status != models.ProjectStatusPublished {
			continue
		}
		metrics, err := ComputeProjectMetrics(p, milestonesByProject[p.ID], ratingsByProject[p.ID])
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedProject{Project: p, Metrics: metrics})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Metrics.OverallScore != ranked[j].Metrics.OverallScore {
			return ranked[i].Metrics.OverallScore > ranked[j].Metrics.OverallScore
		}
		return ranked[i].Project.CreatedAt.Before(ranked[j].Project.CreatedAt)
	})

	if len(ranked) > LeaderboardMaxEntries {
		ranked = ranked[:LeaderboardMaxEntries]
	}

	return ranked, nil
}

// AnalyticsService loads scoring inputs from the store and runs the
// in-process aggregation over them.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// ProjectLeaderboard returns the ranked published projects, at most
// LeaderboardMaxEntries of them.
func (s *AnalyticsService) ProjectLeaderboard() ([]RankedProject, error) {
	var projects []models.Project
	if err := s.db.Where("status = ?", models.ProjectStatusPublished).
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("%w: load projects: %v", ErrDependencyFailure, err)
	}

	if len(projects) == 0 {
		return []RankedProject{}, nil
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	var milestones []models.Milestone
	if err := s.db.Where("project_id IN ?", ids).Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("%w: load milestones: %v", ErrDependencyFailure, err)
	}

	var ratings []models.ProjectRating
	if err := s.db.Where("project_id IN ?", ids).Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("%w: load ratings: %v", ErrDependencyFailure, err)
	}

	milestonesByProject := make(map[string][]models.Milestone, len(projects))
	for _, m := range milestones {
		milestonesByProject[m.ProjectID] = append(milestonesByProject[m.ProjectID], m)
	}

	ratingsByProject := make(map[string][]models.ProjectRating, len(projects))
	for _, r := range ratings {
		ratingsByProject[r.ProjectID] = append(ratingsByProject[r.ProjectID], r)
	}

	return RankLeaderboard(projects, milestonesByProject, ratingsByProject)
}

// ProjectMetricsByID computes metrics for a single project.
func (s *AnalyticsService) ProjectMetricsByID(projectID string) (*RankedProject, error) {
	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load project: %v", ErrDependencyFailure, err)
	}

	var milestones []models.Milestone
	if err := s.db.Where("project_id = ?", projectID).Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("%w: load milestones: %v", ErrDependencyFailure, err)
	}

	var ratings []models.ProjectRating
	if err := s.db.Where("project_id = ?", projectID).Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("%w: load ratings: %v", ErrDependencyFailure, err)
	}

	metrics, err := ComputeProjectMetrics(project, milestones, ratings)
	if err != nil {
		return nil, err
	}

	return &RankedProject{Project: project, Metrics: metrics}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

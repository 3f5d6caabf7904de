package controllers

import (
	"net/http"

	"openbudget-api/config"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
)

// GetSystemStats returns the global counters shown on the public integrity
// page. Draft projects are excluded from every figure.
func GetSystemStats(c *gin.Context) {
	var sums struct {
		TotalProjects  int64
		TotalBudget    int64
		TotalAllocated int64
		TotalReleased  int64
	}
	if err := config.DB.Model(&models.Project{}).
		Select("COUNT(*) AS total_projects, COALESCE(SUM(total_amount), 0) AS total_budget, COALESCE(SUM(total_allocated), 0) AS total_allocated, COALESCE(SUM(total_released), 0) AS total_released").
		Where("status <> ?", models.ProjectStatusDraft).
		Scan(&sums).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch system stats"})
		return
	}

	var publicIDs []string
	config.DB.Model(&models.Project{}).
		Where("status <> ?", models.ProjectStatusDraft).
		Pluck("id", &publicIDs)

	var totalMilestones, releasedMilestones int64
	var totalRatings, totalComments, totalIssues, openIssues int64
	var totalMinistries int64

	if len(publicIDs) > 0 {
		config.DB.Model(&models.Milestone{}).Where("project_id IN ?", publicIDs).Count(&totalMilestones)
		config.DB.Model(&models.Milestone{}).Where("project_id IN ? AND is_released = ?", publicIDs, true).Count(&releasedMilestones)
		config.DB.Model(&models.ProjectRating{}).Where("project_id IN ?", publicIDs).Count(&totalRatings)
		config.DB.Model(&models.Comment{}).Where("project_id IN ? AND is_hidden = ?", publicIDs, false).Count(&totalComments)
		config.DB.Model(&models.Issue{}).Where("project_id IN ?", publicIDs).Count(&totalIssues)
		config.DB.Model(&models.Issue{}).
			Where("project_id IN ? AND status IN ?", publicIDs,
				[]string{models.IssueStatusOpen, models.IssueStatusInvestigating}).
			Count(&openIssues)
	}

	config.DB.Model(&models.MinistryAccount{}).Count(&totalMinistries)

	releaseRate := 0.0
	if sums.TotalBudget > 0 {
		releaseRate = float64(sums.TotalReleased) / float64(sums.TotalBudget) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_ministries":    totalMinistries,
			"total_projects":      sums.TotalProjects,
			"total_budget":        sums.TotalBudget,
			"total_allocated":     sums.TotalAllocated,
			"total_released":      sums.TotalReleased,
			"release_rate":        releaseRate,
			"total_milestones":    totalMilestones,
			"released_milestones": releasedMilestones,
			"total_ratings":       totalRatings,
			"total_comments":      totalComments,
			"total_issues":        totalIssues,
			"open_issues":         openIssues,
		},
	})
}

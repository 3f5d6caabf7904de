package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"openbudget-api/config"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats summarizes a ministry's portfolio for its dashboard
func GetDashboardStats(c *gin.Context) {
	ministryID, _ := c.Get("ministryID")

	var projects []models.Project
	if err := config.DB.Where("ministry_id = ?", ministryID).Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}

	var totalBudget, totalAllocated, totalReleased int64
	statusCounts := map[string]int{}
	published := 0
	verified := 0
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		statusCounts[p.Status]++
		totalBudget += p.TotalAmount
		totalAllocated += p.TotalAllocated
		totalReleased += p.TotalReleased
		if p.Status != models.ProjectStatusDraft {
			published++
			if p.BlockchainID != nil && p.CreationTx != nil {
				verified++
			}
		}
	}

	budgetUtilization := 0.0
	if totalBudget > 0 {
		budgetUtilization = float64(totalReleased) / float64(totalBudget) * 100
	}
	chainVerification := 0.0
	if published > 0 {
		chainVerification = float64(verified) / float64(published) * 100
	}

	stats := gin.H{
		"total_projects":     len(projects),
		"draft_projects":     statusCounts[models.ProjectStatusDraft],
		"published_projects": statusCounts[models.ProjectStatusPublished],
		"completed_projects": statusCounts[models.ProjectStatusCompleted],
		"total_budget":       totalBudget,
		"total_allocated":    totalAllocated,
		"total_released":     totalReleased,
		"budget_utilization": budgetUtilization,
		"chain_verification": chainVerification,
	}

	if len(ids) > 0 {
		var totalRatings, totalComments, totalWatchers int64
		config.DB.Model(&models.ProjectRating{}).Where("project_id IN ?", ids).Count(&totalRatings)
		config.DB.Model(&models.Comment{}).Where("project_id IN ?", ids).Count(&totalComments)
		config.DB.Model(&models.ProjectSubscription{}).
			Where("project_id IN ? AND is_active = ?", ids, true).
			Count(&totalWatchers)

		var avgRating *float64
		var avgRow struct{ Avg *float64 }
		config.DB.Model(&models.ProjectRating{}).
			Select("AVG(rating) AS avg").
			Where("project_id IN ?", ids).
			Scan(&avgRow)
		avgRating = avgRow.Avg

		stats["engagement"] = gin.H{
			"total_ratings":  totalRatings,
			"total_comments": totalComments,
			"total_watchers": totalWatchers,
			"avg_rating":     avgRating,
		}

		var issueRows []struct {
			Severity string
			Total    int64
		}
		config.DB.Model(&models.Issue{}).
			Select("severity, COUNT(*) AS total").
			Where("project_id IN ? AND status IN ?", ids,
				[]string{models.IssueStatusOpen, models.IssueStatusInvestigating}).
			Group("severity").
			Scan(&issueRows)

		issues := gin.H{
			models.IssueSeverityLow:      int64(0),
			models.IssueSeverityMedium:   int64(0),
			models.IssueSeverityHigh:     int64(0),
			models.IssueSeverityCritical: int64(0),
		}
		var openIssues int64
		for _, row := range issueRows {
			issues[row.Severity] = row.Total
			openIssues += row.Total
		}
		stats["open_issues"] = openIssues
		stats["issues_by_severity"] = issues
	} else {
		stats["engagement"] = gin.H{
			"total_ratings":  0,
			"total_comments": 0,
			"total_watchers": 0,
			"avg_rating":     nil,
		}
		stats["open_issues"] = 0
		stats["issues_by_severity"] = gin.H{}
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type activityItem struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// GetRecentActivity merges the latest events across a ministry's projects
// into one feed, newest first
func GetRecentActivity(c *gin.Context) {
	ministryID, _ := c.Get("ministryID")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	var projectIDs []string
	if err := config.DB.Model(&models.Project{}).
		Where("ministry_id = ?", ministryID).
		Pluck("id", &projectIDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	if len(projectIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"activity": []activityItem{}})
		return
	}

	items := make([]activityItem, 0, limit*4)

	var publishedProjects []models.Project
	config.DB.Where("id IN ? AND status <> ?", projectIDs, models.ProjectStatusDraft).
		Order("updated_at DESC").Limit(limit).Find(&publishedProjects)
	for _, p := range publishedProjects {
		ts := p.CreatedAt
		if p.UpdatedAt != nil {
			ts = *p.UpdatedAt
		}
		items = append(items, activityItem{
			Type:      "project_published",
			Timestamp: ts,
			Data:      gin.H{"project_id": p.ID, "title": p.Title, "status": p.Status},
		})
	}

	var releasedMilestones []models.Milestone
	config.DB.Where("project_id IN ? AND is_released = ?", projectIDs, true).
		Order("released_at DESC").Limit(limit).Find(&releasedMilestones)
	for _, m := range releasedMilestones {
		if m.ReleasedAt == nil {
			continue
		}
		items = append(items, activityItem{
			Type:      "milestone_released",
			Timestamp: *m.ReleasedAt,
			Data: gin.H{
				"project_id":      m.ProjectID,
				"milestone_id":    m.ID,
				"milestone_index": m.Index,
				"amount":          m.Amount,
			},
		})
	}

	var comments []models.Comment
	config.DB.Where("project_id IN ? AND is_hidden = ?", projectIDs, false).
		Order("created_at DESC").Limit(limit).Find(&comments)
	for _, cm := range comments {
		items = append(items, activityItem{
			Type:      "comment",
			Timestamp: cm.CreatedAt,
			Data: gin.H{
				"project_id":  cm.ProjectID,
				"comment_id":  cm.ID,
				"author_name": cm.AuthorName,
			},
		})
	}

	var issues []models.Issue
	config.DB.Where("project_id IN ?", projectIDs).
		Order("created_at DESC").Limit(limit).Find(&issues)
	for _, is := range issues {
		items = append(items, activityItem{
			Type:      "issue",
			Timestamp: is.CreatedAt,
			Data: gin.H{
				"project_id": is.ProjectID,
				"issue_id":   is.ID,
				"issue_type": is.IssueType,
				"severity":   is.Severity,
				"title":      is.Title,
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	c.JSON(http.StatusOK, gin.H{"activity": items})
}

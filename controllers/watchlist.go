package controllers

import (
	"net/http"
	"time"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// GetWatchlist lists a citizen's active subscriptions with the watched
// project attached
func GetWatchlist(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email"})
		return
	}

	var subscriptions []models.ProjectSubscription
	if err := config.DB.
		Where("email = ? AND is_active = ?", email, true).
		Order("created_at DESC").
		Find(&subscriptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist"})
		return
	}

	projects := make(map[string]models.Project)
	if len(subscriptions) > 0 {
		ids := make([]string, 0, len(subscriptions))
		for _, s := range subscriptions {
			ids = append(ids, s.ProjectID)
		}

		var rows []models.Project
		config.DB.Where("id IN ?", ids).Find(&rows)
		for _, p := range rows {
			projects[p.ID] = p
		}
	}

	results := make([]gin.H, 0, len(subscriptions))
	for _, s := range subscriptions {
		entry := gin.H{
			"id":                     s.ID,
			"project_id":             s.ProjectID,
			"email":                  s.Email,
			"name":                   s.Name,
			"notification_frequency": s.NotificationFrequency,
			"created_at":             s.CreatedAt,
		}
		if p, ok := projects[s.ProjectID]; ok {
			entry["project"] = gin.H{
				"id":             p.ID,
				"title":          p.Title,
				"recipient_name": p.RecipientName,
				"status":         p.Status,
				"total_amount":   p.TotalAmount,
				"total_released": p.TotalReleased,
			}
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": results})
}

type WatchProjectRequest struct {
	ProjectID             string `json:"project_id"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	NotificationFrequency string `json:"notification_frequency"`
}

// WatchProject subscribes a citizen to a project. Re-watching a previously
// removed project reactivates the old row.
func WatchProject(c *gin.Context) {
	var req WatchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ProjectID == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and email are required"})
		return
	}

	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}

	frequency := req.NotificationFrequency
	switch frequency {
	case "":
		frequency = models.NotifyInstant
	case models.NotifyInstant, models.NotifyDaily, models.NotifyWeekly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification_frequency"})
		return
	}

	var project models.Project
	if err := config.DB.Select("id").Where("id = ?", req.ProjectID).First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	subscription := models.ProjectSubscription{
		ProjectID:             req.ProjectID,
		Email:                 req.Email,
		Name:                  utils.SanitizeInput(req.Name),
		NotificationFrequency: frequency,
		IsActive:              true,
		CreatedAt:             time.Now(),
	}

	now := time.Now()
	err := config.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":                   subscription.Name,
			"notification_frequency": frequency,
			"is_active":              true,
			"updated_at":             now,
		}),
	}).Create(&subscription).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to watch project"})
		return
	}

	var stored models.ProjectSubscription
	if err := config.DB.
		Where("project_id = ? AND email = ?", req.ProjectID, req.Email).
		First(&stored).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to watch project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": stored,
		"message":      "Project added to watchlist",
	})
}

// UnwatchProject deactivates a subscription without deleting the row
func UnwatchProject(c *gin.Context) {
	projectID := c.Query("project_id")
	email := c.Query("email")

	if projectID == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and email are required"})
		return
	}

	result := config.DB.Model(&models.ProjectSubscription{}).
		Where("project_id = ? AND email = ? AND is_active = ?", projectID, email, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update watchlist"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project removed from watchlist",
	})
}

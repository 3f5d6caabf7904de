package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"unicode/utf8"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/services"
	"openbudget-api/utils"

	"github.com/gin-gonic/gin"
)

const (
	minCommentLength = 1
	maxCommentLength = 1000
)

// GetComments lists top-level comments for a project or milestone
func GetComments(c *gin.Context) {
	projectID := c.Query("project_id")
	milestoneID := c.Query("milestone_id")

	if projectID == "" && milestoneID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing filter: provide project_id or milestone_id"})
		return
	}

	query := config.DB.Model(&models.Comment{}).
		Where("parent_comment_id IS NULL AND is_hidden = ?", false)
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	} else {
		query = query.Where("milestone_id = ?", milestoneID)
	}

	var comments []models.Comment
	if err := query.Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	// Reply counts for the returned page
	replyCounts := make(map[string]int64)
	if len(comments) > 0 {
		ids := make([]string, 0, len(comments))
		for _, cm := range comments {
			ids = append(ids, cm.ID)
		}

		var rows []struct {
			ParentCommentID string
			Total           int64
		}
		config.DB.Model(&models.Comment{}).
			Select("parent_comment_id, COUNT(*) AS total").
			Where("parent_comment_id IN ?", ids).
			Group("parent_comment_id").
			Scan(&rows)
		for _, row := range rows {
			replyCounts[row.ParentCommentID] = row.Total
		}
	}

	results := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		results = append(results, gin.H{
			"id":           cm.ID,
			"project_id":   cm.ProjectID,
			"milestone_id": cm.MilestoneID,
			"author_email": cm.AuthorEmail,
			"author_name":  cm.AuthorName,
			"content":      cm.Content,
			"created_at":   cm.CreatedAt,
			"reply_count":  replyCounts[cm.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"comments": results})
}

// GetCommentReplies lists replies to one comment, oldest first
func GetCommentReplies(c *gin.Context) {
	commentID := c.Param("id")

	var replies []models.Comment
	if err := config.DB.
		Where("parent_comment_id = ? AND is_hidden = ?", commentID, false).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

type CreateCommentRequest struct {
	ProjectID       *string `json:"project_id"`
	MilestoneID     *string `json:"milestone_id"`
	ParentCommentID *string `json:"parent_comment_id"`
	AuthorEmail     string  `json:"author_email"`
	AuthorName      string  `json:"author_name"`
	Content         string  `json:"content"`
}

// CreateComment posts a citizen comment, throttled per author identity
func CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Limits count characters, not bytes
	contentLength := utf8.RuneCountInString(req.Content)
	if contentLength < minCommentLength || contentLength > maxCommentLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Content must be between %d and %d characters", minCommentLength, maxCommentLength),
		})
		return
	}

	if req.AuthorEmail == "" || req.AuthorName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Author email and name are required"})
		return
	}

	if !utils.ValidateEmail(req.AuthorEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author email"})
		return
	}

	// A comment targets exactly one of project or milestone
	if req.ProjectID == nil && req.MilestoneID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Must specify either project_id or milestone_id"})
		return
	}
	if req.ProjectID != nil && req.MilestoneID != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot specify both project_id and milestone_id"})
		return
	}

	limiter := services.NewRateLimiter(config.DB)
	if err := limiter.CheckComment(req.AuthorEmail); err != nil {
		if errors.Is(err, services.ErrRateLimitExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Maximum 5 comments per 24 hours."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	comment := models.Comment{
		ProjectID:       req.ProjectID,
		MilestoneID:     req.MilestoneID,
		ParentCommentID: req.ParentCommentID,
		AuthorEmail:     req.AuthorEmail,
		AuthorName:      utils.SanitizeInput(req.AuthorName),
		Content:         req.Content,
	}

	if err := config.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if comment.ProjectID != nil {
		go notifyWatchers(*comment.ProjectID, comment)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"comment": comment,
		"message": "Comment posted successfully",
	})
}

// notifyWatchers emails active subscribers of the commented project.
// Best effort; failures are logged only.
func notifyWatchers(projectID string, comment models.Comment) {
	var project models.Project
	if err := config.DB.Select("id, title").Where("id = ?", projectID).First(&project).Error; err != nil {
		return
	}

	var subscriptions []models.ProjectSubscription
	if err := config.DB.
		Where("project_id = ? AND is_active = ? AND notification_frequency = ?",
			projectID, true, models.NotifyInstant).
		Find(&subscriptions).Error; err != nil {
		return
	}

	recipients := make([]string, 0, len(subscriptions))
	for _, s := range subscriptions {
		if s.Email != comment.AuthorEmail {
			recipients = append(recipients, s.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("New comment on %s", project.Title)
	body := fmt.Sprintf("<p><strong>%s</strong> commented on <em>%s</em>:</p><blockquote>%s</blockquote>",
		comment.AuthorName, project.Title, comment.Content)

	if err := config.SendMail(recipients, subject, body); err != nil {
		log.Printf("Failed to notify watchers of project %s: %v", projectID, err)
	}
}

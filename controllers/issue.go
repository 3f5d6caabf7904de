package controllers

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/services"
	"openbudget-api/utils"

	"github.com/gin-gonic/gin"
)

const (
	minIssueDescriptionLength = 10
	maxIssueDescriptionLength = 2000
)

var validIssueTypes = map[string]bool{
	models.IssueTypeBudgetMismatch:  true,
	models.IssueTypeMissingProof:    true,
	models.IssueTypeDelayedRelease:  true,
	models.IssueTypeFraudulentClaim: true,
	models.IssueTypeOther:           true,
}

// GetIssues lists reported issues with optional filters
func GetIssues(c *gin.Context) {
	projectID := c.Query("project_id")
	milestoneID := c.Query("milestone_id")
	status := c.Query("status")
	severity := c.Query("severity")

	query := config.DB.Table("issues i").
		Select("i.*, p.title AS project_title, p.recipient_name").
		Joins("JOIN projects p ON i.project_id = p.id")

	if projectID != "" {
		query = query.Where("i.project_id = ?", projectID)
	}
	if milestoneID != "" {
		query = query.Where("i.milestone_id = ?", milestoneID)
	}
	if status != "" {
		query = query.Where("i.status = ?", status)
	}
	if severity != "" {
		query = query.Where("i.severity = ?", severity)
	}

	var issues []map[string]interface{}
	if err := query.Order("i.created_at DESC").Scan(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

type CreateIssueRequest struct {
	ProjectID     string  `json:"project_id"`
	MilestoneID   *string `json:"milestone_id"`
	ReporterEmail string  `json:"reporter_email"`
	ReporterName  string  `json:"reporter_name"`
	IssueType     string  `json:"issue_type"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Severity      string  `json:"severity"`
}

// CreateIssue records a citizen transparency report, throttled per reporter
func CreateIssue(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ProjectID == "" || req.ReporterEmail == "" || req.ReporterName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id, reporter_email, and reporter_name are required"})
		return
	}

	if req.IssueType == "" || req.Title == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_type, title, and description are required"})
		return
	}

	descriptionLength := utf8.RuneCountInString(req.Description)
	if descriptionLength < minIssueDescriptionLength || descriptionLength > maxIssueDescriptionLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description must be between 10 and 2000 characters"})
		return
	}

	if !validIssueTypes[req.IssueType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue_type"})
		return
	}

	switch req.Severity {
	case "", models.IssueSeverityLow, models.IssueSeverityMedium, models.IssueSeverityHigh, models.IssueSeverityCritical:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}

	if !utils.ValidateEmail(req.ReporterEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reporter email"})
		return
	}

	var project models.Project
	if err := config.DB.Select("id").Where("id = ?", req.ProjectID).First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	limiter := services.NewRateLimiter(config.DB)
	if err := limiter.CheckIssue(req.ReporterEmail); err != nil {
		if errors.Is(err, services.ErrRateLimitExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Maximum 5 reports per 24 hours."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to report issue"})
		return
	}

	issue := models.Issue{
		ProjectID:     req.ProjectID,
		MilestoneID:   req.MilestoneID,
		ReporterEmail: req.ReporterEmail,
		ReporterName:  utils.SanitizeInput(req.ReporterName),
		IssueType:     req.IssueType,
		Title:         utils.SanitizeInput(req.Title),
		Description:   req.Description,
		Severity:      req.Severity,
	}

	if err := config.DB.Create(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to report issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issue":   issue,
		"message": "Issue reported successfully",
	})
}

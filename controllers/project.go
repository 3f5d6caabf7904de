package controllers

import (
	"net/http"
	"strconv"
	"time"

	"openbudget-api/config"
	"openbudget-api/middleware"
	"openbudget-api/models"
	"openbudget-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	RecipientName string  `json:"recipient_name"`
	RecipientType *string `json:"recipient_type"`
	TotalAmount   int64   `json:"total_amount"`
	MinistryID    string  `json:"ministry_id"`
}

// CreateProject creates a new draft project for the caller's ministry
func CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.MinistryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ministry ID is required"})
		return
	}

	// A ministry can only create projects for itself
	if !middleware.RequireMinistry(c, req.MinistryID) {
		return
	}

	if utils.SanitizeInput(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	if utils.SanitizeInput(req.RecipientName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient name is required"})
		return
	}

	if req.TotalAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Total amount must be greater than 0"})
		return
	}

	project := models.Project{
		MinistryID:    req.MinistryID,
		Title:         utils.SanitizeInput(req.Title),
		Description:   req.Description,
		RecipientName: utils.SanitizeInput(req.RecipientName),
		RecipientType: req.RecipientType,
		TotalAmount:   req.TotalAmount,
		Status:        models.ProjectStatusDraft,
		CreatedAt:     time.Now(),
	}

	if err := config.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

// GetProjects lists projects with optional filters
func GetProjects(c *gin.Context) {
	status := c.Query("status")
	ministryID := c.Query("ministry_id")
	ministry := c.Query("ministry")
	search := c.Query("search")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := config.DB.Model(&models.Project{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if ministryID != "" {
		query = query.Where("ministry_id = ?", ministryID)
	}
	if ministry != "" {
		query = query.Where("recipient_name ILIKE ?", "%"+ministry+"%")
	}
	if search != "" {
		query = query.Where("(title ILIKE ? OR recipient_name ILIKE ?)", "%"+search+"%", "%"+search+"%")
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	// Attach milestone counts in one pass
	counts := make(map[string]int64)
	if len(projects) > 0 {
		ids := make([]string, 0, len(projects))
		for _, p := range projects {
			ids = append(ids, p.ID)
		}

		var rows []struct {
			ProjectID string
			Total     int64
		}
		config.DB.Model(&models.Milestone{}).
			Select("project_id, COUNT(*) AS total").
			Where("project_id IN ?", ids).
			Group("project_id").
			Scan(&rows)
		for _, row := range rows {
			counts[row.ProjectID] = row.Total
		}
	}

	results := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		results = append(results, gin.H{
			"id":              p.ID,
			"ministry_id":     p.MinistryID,
			"title":           p.Title,
			"description":     p.Description,
			"recipient_name":  p.RecipientName,
			"recipient_type":  p.RecipientType,
			"total_amount":    p.TotalAmount,
			"total_allocated": p.TotalAllocated,
			"total_released":  p.TotalReleased,
			"status":          p.Status,
			"blockchain_id":   p.BlockchainID,
			"chain_account":   p.ChainAccount,
			"creation_tx":     p.CreationTx,
			"created_at":      p.CreatedAt,
			"updated_at":      p.UpdatedAt,
			"milestone_count": counts[p.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": results,
		"total":    len(results),
	})
}

// GetProject returns one project with its milestones
func GetProject(c *gin.Context) {
	id := c.Param("id")

	if !utils.ValidateUUID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	var project models.Project
	if err := config.DB.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("milestone_index ASC")
	}).Where("id = ?", id).First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

type PublishProjectRequest struct {
	BlockchainID         string `json:"blockchain_id"`
	TransactionSignature string `json:"transaction_signature"`
}

// PublishProject moves a draft project on-chain and marks it published.
// The transaction itself is signed wallet-side; the API stores the reported
// signature and the derived account address.
func PublishProject(c *gin.Context) {
	id := c.Param("id")

	if !utils.ValidateUUID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	var req PublishProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.BlockchainID == "" || req.TransactionSignature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing blockchain_id or transaction_signature"})
		return
	}

	var project models.Project
	if err := config.DB.Where("id = ?", id).First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if !middleware.RequireMinistry(c, project.MinistryID) {
		return
	}

	if project.Status == models.ProjectStatusPublished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project already published"})
		return
	}

	chainAccount := utils.DeriveProjectAccount(req.BlockchainID)

	now := time.Now()
	updates := map[string]interface{}{
		"blockchain_id": req.BlockchainID,
		"chain_account": chainAccount,
		"creation_tx":   req.TransactionSignature,
		"status":        models.ProjectStatusPublished,
		"updated_at":    now,
	}

	if err := config.DB.Model(&project).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project published successfully",
		"project": gin.H{
			"id":              project.ID,
			"blockchain_id":   req.BlockchainID,
			"title":           project.Title,
			"status":          models.ProjectStatusPublished,
			"chain_account":   chainAccount,
			"creation_tx":     req.TransactionSignature,
			"explorer_url":    utils.ExplorerURL(chainAccount, "address"),
			"tx_explorer_url": utils.ExplorerURL(req.TransactionSignature, "tx"),
		},
	})
}

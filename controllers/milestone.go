package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateMilestoneRequest struct {
	ProjectID   string `json:"project_id"`
	Index       *int   `json:"milestone_index"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// CreateMilestone adds a milestone to a published project. Runs in a
// transaction with a row lock so the budget check and the allocation update
// see a consistent total.
func CreateMilestone(c *gin.Context) {
	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}
	if req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Milestone index is required"})
		return
	}
	if *req.Index < 0 || *req.Index > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Milestone index must be between 0 and 255"})
		return
	}
	if utils.SanitizeInput(req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than 0"})
		return
	}

	ministryID, _ := c.Get("ministryID")

	var milestone models.Milestone
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.ProjectID).
			First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("project not found")
			}
			return err
		}

		if project.MinistryID != ministryID.(string) {
			return fmt.Errorf("forbidden: you can only add milestones to your ministry's projects")
		}

		if project.Status != models.ProjectStatusPublished {
			return fmt.Errorf("project must be published before adding milestones")
		}

		newTotal := project.TotalAllocated + req.Amount
		if newTotal > project.TotalAmount {
			return fmt.Errorf("budget exceeded: %d > %d, available: %d",
				newTotal, project.TotalAmount, project.TotalAmount-project.TotalAllocated)
		}

		var existing int64
		if err := tx.Model(&models.Milestone{}).
			Where("project_id = ? AND milestone_index = ?", req.ProjectID, *req.Index).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("milestone with index %d already exists for this project", *req.Index)
		}

		milestone = models.Milestone{
			ProjectID:   req.ProjectID,
			Index:       *req.Index,
			Description: utils.SanitizeInput(req.Description),
			Amount:      req.Amount,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&milestone).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", req.ProjectID).
			Updates(map[string]interface{}{
				"total_allocated": gorm.Expr("total_allocated + ?", req.Amount),
				"updated_at":      time.Now(),
			}).Error
	})

	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
		case strings.Contains(msg, "forbidden"):
			c.JSON(http.StatusForbidden, gin.H{"error": msg})
		case strings.Contains(msg, "budget exceeded"),
			strings.Contains(msg, "must be published"),
			strings.Contains(msg, "already exists"):
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create milestone"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Milestone created successfully",
		"milestone": milestone,
	})
}

// GetMilestones lists milestones with optional filters
func GetMilestones(c *gin.Context) {
	projectID := c.Query("project_id")
	isReleased := c.Query("is_released")

	query := config.DB.Model(&models.Milestone{})

	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if isReleased != "" {
		query = query.Where("is_released = ?", isReleased == "true")
	}

	var milestones []models.Milestone
	if err := query.Order("project_id, milestone_index ASC").Find(&milestones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch milestones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestones": milestones,
		"count":      len(milestones),
	})
}

type ReleaseMilestoneRequest struct {
	ProofURL             string `json:"proof_url"`
	TransactionSignature string `json:"transaction_signature"`
}

// ReleaseMilestone marks a milestone's funds as released and rolls the
// amount up into the project's total_released.
func ReleaseMilestone(c *gin.Context) {
	id := c.Param("id")

	if !utils.ValidateUUID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid milestone ID format"})
		return
	}

	var req ReleaseMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if utils.SanitizeInput(req.ProofURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Proof URL is required"})
		return
	}
	if utils.SanitizeInput(req.TransactionSignature) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction signature is required"})
		return
	}

	var milestone models.Milestone
	var chainAccount string

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&milestone).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("milestone not found")
			}
			return err
		}

		if milestone.IsReleased {
			return fmt.Errorf("milestone already released")
		}

		var project models.Project
		if err := tx.Where("id = ?", milestone.ProjectID).First(&project).Error; err != nil {
			return err
		}

		if project.BlockchainID == nil {
			return fmt.Errorf("project must be published before releasing milestones")
		}

		account, err := utils.DeriveMilestoneAccount(*project.BlockchainID, milestone.Index)
		if err != nil {
			return err
		}
		chainAccount = account

		now := time.Now()
		if err := tx.Model(&milestone).Updates(map[string]interface{}{
			"is_released": true,
			"release_tx":  req.TransactionSignature,
			"proof_url":   req.ProofURL,
			"released_at": now,
			"updated_at":  now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", milestone.ProjectID).
			Updates(map[string]interface{}{
				"total_released": gorm.Expr("total_released + ?", milestone.Amount),
				"updated_at":     now,
			}).Error
	})

	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
		case strings.Contains(msg, "already released"),
			strings.Contains(msg, "must be published"):
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release milestone"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Milestone funds released successfully",
		"milestone": gin.H{
			"id":              milestone.ID,
			"project_id":      milestone.ProjectID,
			"index":           milestone.Index,
			"description":     milestone.Description,
			"amount":          milestone.Amount,
			"is_released":     true,
			"release_tx":      req.TransactionSignature,
			"proof_url":       req.ProofURL,
			"chain_account":   chainAccount,
			"explorer_url":    utils.ExplorerURL(chainAccount, "address"),
			"tx_explorer_url": utils.ExplorerURL(req.TransactionSignature, "tx"),
		},
	})
}

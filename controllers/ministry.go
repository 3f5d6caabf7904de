package controllers

import (
	"net/http"
	"time"

	"openbudget-api/config"
	"openbudget-api/middleware"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
)

// GetMinistryAccount returns one ministry account
func GetMinistryAccount(c *gin.Context) {
	id := c.Param("id")

	var account models.MinistryAccount
	if err := config.DB.Where("id = ?", id).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ministry account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateMinistryAccount updates the caller's own account details
func UpdateMinistryAccount(c *gin.Context) {
	id := c.Param("id")

	if !middleware.RequireMinistry(c, id) {
		return
	}

	type UpdateRequest struct {
		Name          *string `json:"name"`
		MinistryName  *string `json:"ministry_name"`
		WalletAddress *string `json:"wallet_address"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var account models.MinistryAccount
	if err := config.DB.Where("id = ?", id).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ministry account not found"})
		return
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.MinistryName != nil {
		account.MinistryName = *req.MinistryName
	}
	if req.WalletAddress != nil {
		account.WalletAddress = req.WalletAddress
	}

	now := time.Now()
	account.UpdatedAt = &now

	if err := config.DB.Save(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ministry account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"message": "Ministry account updated successfully",
	})
}

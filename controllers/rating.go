package controllers

import (
	"errors"
	"math"
	"net/http"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/services"

	"github.com/gin-gonic/gin"
)

// GetRatings returns the individual ratings and the star breakdown for a
// project
func GetRatings(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing project_id"})
		return
	}

	var ratings []models.ProjectRating
	if err := config.DB.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ratings"})
		return
	}

	stats := gin.H{
		"average_rating": 0.0,
		"total_ratings":  len(ratings),
	}
	starCounts := [6]int{}
	sum := 0
	for _, r := range ratings {
		if r.Rating >= 1 && r.Rating <= 5 {
			starCounts[r.Rating]++
			sum += r.Rating
		}
	}
	if len(ratings) > 0 {
		avg := float64(sum) / float64(len(ratings))
		stats["average_rating"] = math.Round(avg*100) / 100
	}
	stats["five_star"] = starCounts[5]
	stats["four_star"] = starCounts[4]
	stats["three_star"] = starCounts[3]
	stats["two_star"] = starCounts[2]
	stats["one_star"] = starCounts[1]

	c.JSON(http.StatusOK, gin.H{
		"ratings": ratings,
		"stats":   stats,
	})
}

type SubmitRatingRequest struct {
	ProjectID string `json:"project_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// SubmitRating creates or overwrites the caller's rating for a project
func SubmitRating(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perf := services.NewPerformanceService(config.DB, config.Redis)
	svc := services.NewRatingService(config.DB, perf.Refresh)

	result, err := svc.Submit(c.Request.Context(), services.RatingInput{
		ProjectID: req.ProjectID,
		Email:     req.Email,
		Name:      req.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		switch {
		case services.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit rating"})
		}
		return
	}

	response := gin.H{
		"success": true,
		"rating":  result.Rating,
		"message": "Rating submitted successfully",
	}
	if result.RefreshFailed {
		// The rating is stored; the leaderboard aggregate will catch up on
		// the next refresh.
		response["warning"] = "leaderboard refresh is delayed"
		response["refresh_failed"] = true
	}

	c.JSON(http.StatusOK, response)
}

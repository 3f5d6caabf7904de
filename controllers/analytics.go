package controllers

import (
	"encoding/json"
	"math"
	"net/http"

	"openbudget-api/config"
	"openbudget-api/models"
	"openbudget-api/services"

	"github.com/gin-gonic/gin"
)

// GetMinistryLeaderboard serves the ranked ministry aggregate, cached in
// Redis until the next performance refresh or TTL expiry
func GetMinistryLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	if config.Redis != nil {
		if cached, err := config.Redis.Get(ctx, services.MinistryLeaderboardCacheKey).Bytes(); err == nil {
			var rows []services.MinistryPerformance
			if json.Unmarshal(cached, &rows) == nil {
				c.JSON(http.StatusOK, gin.H{"leaderboard": rows, "cached": true})
				return
			}
		}
	}

	perf := services.NewPerformanceService(config.DB, config.Redis)
	rows, err := perf.MinistryLeaderboard(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	if config.Redis != nil {
		if payload, err := json.Marshal(rows); err == nil {
			config.Redis.Set(ctx, services.MinistryLeaderboardCacheKey, payload, services.CacheTTL())
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

// GetProjectLeaderboard serves the per-project ranking computed in process
func GetProjectLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	if config.Redis != nil {
		if cached, err := config.Redis.Get(ctx, services.ProjectLeaderboardCacheKey).Bytes(); err == nil {
			var ranked []services.RankedProject
			if json.Unmarshal(cached, &ranked) == nil {
				c.JSON(http.StatusOK, gin.H{"leaderboard": ranked, "cached": true})
				return
			}
		}
	}

	svc := services.NewAnalyticsService(config.DB)
	ranked, err := svc.ProjectLeaderboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	if config.Redis != nil {
		if payload, err := json.Marshal(ranked); err == nil {
			config.Redis.Set(ctx, services.ProjectLeaderboardCacheKey, payload, services.CacheTTL())
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": ranked})
}

// GetProjectMetrics returns the derived metrics of one project
func GetProjectMetrics(c *gin.Context) {
	svc := services.NewAnalyticsService(config.DB)

	ranked, err := svc.ProjectMetricsByID(c.Param("id"))
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": ranked.Project,
		"metrics": ranked.Metrics,
	})
}

// GetTrends buckets non-draft projects by calendar period
func GetTrends(c *gin.Context) {
	svc := services.NewAnalyticsService(config.DB)

	trends, err := svc.Trends(services.TrendQuery{
		Granularity: c.DefaultQuery("granularity", services.GranularityMonthly),
		Ministry:    c.Query("ministry"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// Anomaly detector thresholds. Budget amounts are in the smallest currency
// unit; 100B is the bar for a "large" project.
const (
	anomalyBigBudget        = int64(100_000_000_000)
	anomalyLowReleaseRatio  = 0.3
	anomalyLowTrustScore    = 2.5
	anomalyMinTrustRatings  = 3
	anomalyResultsPerReason = 10
)

// GetAnomalies scans published projects for patterns that merit citizen
// attention: big budgets with little released, released milestones missing
// proof, allocation beyond budget, and consistently low trust scores.
func GetAnomalies(c *gin.Context) {
	var projects []models.Project
	if err := config.DB.Where("status = ?", models.ProjectStatusPublished).
		Order("total_amount DESC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan for anomalies"})
		return
	}

	anomalies := make([]gin.H, 0)

	lowRelease := 0
	for _, p := range projects {
		if lowRelease >= anomalyResultsPerReason {
			break
		}
		if p.TotalAmount <= anomalyBigBudget {
			continue
		}
		if float64(p.TotalReleased)/float64(p.TotalAmount) >= anomalyLowReleaseRatio {
			continue
		}
		lowRelease++
		anomalies = append(anomalies, gin.H{
			"type":           "low_release_rate",
			"project_id":     p.ID,
			"title":          p.Title,
			"recipient_name": p.RecipientName,
			"detail": gin.H{
				"total_amount":   p.TotalAmount,
				"total_released": p.TotalReleased,
				"released_pct":   float64(p.TotalReleased) / float64(p.TotalAmount) * 100,
			},
		})
	}

	var missingProof []struct {
		ProjectID     string
		Title         string
		RecipientName string
		MissingCount  int64
	}
	config.DB.Table("milestones m").
		Select("m.project_id, p.title, p.recipient_name, COUNT(*) AS missing_count").
		Joins("JOIN projects p ON p.id = m.project_id").
		Where("p.status = ? AND m.is_released = ? AND (m.proof_url IS NULL OR m.proof_url = '')",
			models.ProjectStatusPublished, true).
		Group("m.project_id, p.title, p.recipient_name").
		Order("missing_count DESC").
		Limit(anomalyResultsPerReason).
		Scan(&missingProof)
	for _, row := range missingProof {
		anomalies = append(anomalies, gin.H{
			"type":           "missing_proof",
			"project_id":     row.ProjectID,
			"title":          row.Title,
			"recipient_name": row.RecipientName,
			"detail": gin.H{
				"missing_proof_count": row.MissingCount,
			},
		})
	}

	overAllocated := 0
	for _, p := range projects {
		if overAllocated >= anomalyResultsPerReason {
			break
		}
		if p.TotalAllocated <= p.TotalAmount {
			continue
		}
		overAllocated++
		anomalies = append(anomalies, gin.H{
			"type":           "over_allocation",
			"project_id":     p.ID,
			"title":          p.Title,
			"recipient_name": p.RecipientName,
			"detail": gin.H{
				"total_amount":    p.TotalAmount,
				"total_allocated": p.TotalAllocated,
			},
		})
	}

	var lowTrust []struct {
		ProjectID     string
		Title         string
		RecipientName string
		AvgRating     float64
		Total         int64
	}
	config.DB.Table("project_ratings r").
		Select("r.project_id, p.title, p.recipient_name, AVG(r.rating) AS avg_rating, COUNT(*) AS total").
		Joins("JOIN projects p ON p.id = r.project_id").
		Where("p.status = ?", models.ProjectStatusPublished).
		Group("r.project_id, p.title, p.recipient_name").
		Having("COUNT(*) >= ? AND AVG(r.rating) < ?", anomalyMinTrustRatings, anomalyLowTrustScore).
		Order("avg_rating ASC").
		Limit(anomalyResultsPerReason).
		Scan(&lowTrust)
	for _, row := range lowTrust {
		anomalies = append(anomalies, gin.H{
			"type":           "low_trust",
			"project_id":     row.ProjectID,
			"title":          row.Title,
			"recipient_name": row.RecipientName,
			"detail": gin.H{
				"avg_trust_score": math.Round(row.AvgRating*100) / 100,
				"total_ratings":   row.Total,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// RefreshPerformance forces a recompute of the ministry aggregate
func RefreshPerformance(c *gin.Context) {
	perf := services.NewPerformanceService(config.DB, config.Redis)
	if err := perf.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh performance data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Performance data refreshed",
	})
}

package controllers

import (
	"net/http"
	"testing"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRatingsRoundsAverage(t *testing.T) {
	db := setupTestDB(t)
	seedPublishedProject(t, db, "p1", 1000, 0)

	for i, value := range []int{5, 4, 4} {
		rating := models.ProjectRating{
			ID:        string(rune('a' + i)),
			ProjectID: "p1",
			Email:     string(rune('a'+i)) + "@example.com",
			Name:      "Citizen",
			Rating:    value,
		}
		require.NoError(t, db.Create(&rating).Error)
	}

	w := performJSON(t, GetRatings, http.MethodGet, "?project_id=p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)

	// 13/3 = 4.333..., rounded to two decimals
	assert.Equal(t, 4.33, stats["average_rating"])
	assert.Equal(t, float64(3), stats["total_ratings"])
}

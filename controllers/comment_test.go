package controllers

import (
	"net/http"
	"strings"
	"testing"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentContentLimitCountsCharacters(t *testing.T) {
	db := setupTestDB(t)
	seedPublishedProject(t, db, "p1", 1000, 0)
	milestone := models.Milestone{
		ID: "m1", ProjectID: "p1", Index: 0, Description: "Phase 1", Amount: 500,
	}
	require.NoError(t, db.Create(&milestone).Error)

	milestoneID := "m1"
	// 800 characters of Thai text is well past 1000 bytes but under the cap
	content := strings.Repeat("ทดสอบระบบ", 80)

	w := performJSON(t, CreateComment, http.MethodPost, "", CreateCommentRequest{
		MilestoneID: &milestoneID,
		AuthorEmail: "citizen@example.com",
		AuthorName:  "A Citizen",
		Content:     content,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Comment
	require.NoError(t, db.Where("author_email = ?", "citizen@example.com").First(&stored).Error)
	assert.Equal(t, content, stored.Content)
}

func TestCreateCommentRejectsOverlongContent(t *testing.T) {
	db := setupTestDB(t)
	seedPublishedProject(t, db, "p1", 1000, 0)
	milestone := models.Milestone{
		ID: "m1", ProjectID: "p1", Index: 0, Description: "Phase 1", Amount: 500,
	}
	require.NoError(t, db.Create(&milestone).Error)

	milestoneID := "m1"
	w := performJSON(t, CreateComment, http.MethodPost, "", CreateCommentRequest{
		MilestoneID: &milestoneID,
		AuthorEmail: "citizen@example.com",
		AuthorName:  "A Citizen",
		Content:     strings.Repeat("é", maxCommentLength+1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

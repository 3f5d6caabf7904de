package controllers

import (
	"net/http"
	"strings"
	"testing"

	"openbudget-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssueDescriptionLimitCountsCharacters(t *testing.T) {
	db := setupTestDB(t)
	seedPublishedProject(t, db, "p1", 1000, 0)

	// 1500 characters but 3000 bytes; the cap is 2000 characters
	description := strings.Repeat("é", 1500)

	w := performJSON(t, CreateIssue, http.MethodPost, "", CreateIssueRequest{
		ProjectID:     "p1",
		ReporterEmail: "watchdog@example.com",
		ReporterName:  "Watchdog",
		IssueType:     models.IssueTypeDelayedRelease,
		Title:         "Slow release",
		Description:   description,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Issue
	require.NoError(t, db.Where("reporter_email = ?", "watchdog@example.com").First(&stored).Error)
	assert.Equal(t, description, stored.Description)
}

func TestCreateIssueRejectsDescriptionOverCap(t *testing.T) {
	db := setupTestDB(t)
	seedPublishedProject(t, db, "p1", 1000, 0)

	w := performJSON(t, CreateIssue, http.MethodPost, "", CreateIssueRequest{
		ProjectID:     "p1",
		ReporterEmail: "watchdog@example.com",
		ReporterName:  "Watchdog",
		IssueType:     models.IssueTypeDelayedRelease,
		Title:         "Slow release",
		Description:   strings.Repeat("é", maxIssueDescriptionLength+1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

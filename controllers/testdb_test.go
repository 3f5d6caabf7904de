package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"openbudget-api/config"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB points the package-global DB at a throwaway in-memory store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.MinistryAccount{},
		&models.Project{},
		&models.Milestone{},
		&models.ProjectRating{},
		&models.Comment{},
		&models.Issue{},
		&models.ProjectSubscription{},
		&models.FileUpload{},
	))

	config.DB = db
	return db
}

func seedPublishedProject(t *testing.T, db *gorm.DB, id string, totalAmount, totalReleased int64) models.Project {
	t.Helper()

	project := models.Project{
		ID:            id,
		MinistryID:    "ministry-1",
		Title:         "Project " + id,
		RecipientName: "Ministry of Transport",
		TotalAmount:   totalAmount,
		TotalReleased: totalReleased,
		Status:        models.ProjectStatusPublished,
	}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	router := gin.New()
	router.Handle(method, "/under-test", handler)

	req := httptest.NewRequest(method, "/under-test"+target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

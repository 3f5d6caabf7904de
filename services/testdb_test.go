package services

import (
	"testing"

	"openbudget-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
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
	))

	return db
}

func createTestProject(t *testing.T, db *gorm.DB, id string) models.Project {
	t.Helper()

	project := models.Project{
		ID:            id,
		MinistryID:    "ministry-1",
		Title:         "Rural Road Upgrade",
		RecipientName: "Ministry of Transport",
		TotalAmount:   1_000_000,
		Status:        models.ProjectStatusPublished,
	}
	require.NoError(t, db.Create(&project).Error)
	return project
}

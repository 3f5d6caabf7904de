package services

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"openbudget-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxRatingCommentLength = 500

// RefreshFunc is the named aggregate-refresh operation invoked after every
// successful rating write. It must be idempotent and safe to call from
// concurrent requests.
type RefreshFunc func(ctx context.Context) error

// RatingService applies citizen trust ratings with last-write-wins upsert
// semantics. The unique (project_id, email) constraint in the store is the
// arbiter of concurrent submissions.
type RatingService struct {
	db      *gorm.DB
	refresh RefreshFunc
	now     func() time.Time
}

func NewRatingService(db *gorm.DB, refresh RefreshFunc) *RatingService {
	return &RatingService{db: db, refresh: refresh, now: time.Now}
}

// RatingInput is one rating submission.
type RatingInput struct {
	ProjectID string
	Email     string
	Name      string
	Rating    int
	Comment   string
}

// RatingResult reports the stored rating. RefreshFailed is set when the
// rating committed but the downstream aggregate refresh did not; the write
// is never rolled back for a refresh failure.
type RatingResult struct {
	Rating        models.ProjectRating
	RefreshFailed bool
}

// Submit validates and upserts a rating, then synchronously refreshes the
// ministry performance aggregate so an acknowledged write is already
// reflected in the leaderboard.
func (s *RatingService) Submit(ctx context.Context, input RatingInput) (*RatingResult, error) {
	if input.ProjectID == "" || input.Email == "" || input.Name == "" {
		return nil, validationErrorf("project_id, email, and name are required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, validationErrorf("rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(input.Comment) > maxRatingCommentLength {
		return nil, validationErrorf("comment must be %d characters or less", maxRatingCommentLength)
	}

	var project models.Project
	if err := s.db.WithContext(ctx).Select("id").Where("id = ?", input.ProjectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load project: %v", ErrDependencyFailure, err)
	}

	var comment *string
	if input.Comment != "" {
		comment = &input.Comment
	}

	now := s.now()
	rating := models.ProjectRating{
		ProjectID: input.ProjectID,
		Email:     input.Email,
		Name:      input.Name,
		Rating:    input.Rating,
		Comment:   comment,
		CreatedAt: now,
	}

	// Atomic insert-or-update on the (project_id, email) uniqueness
	// constraint; a resubmission keeps the original row id.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     input.Rating,
			"comment":    comment,
			"updated_at": now,
		}),
	}).Create(&rating).Error
	if err != nil {
		return nil, fmt.Errorf("%w: upsert rating: %v", ErrDependencyFailure, err)
	}

	var stored models.ProjectRating
	if err := s.db.WithContext(ctx).
		Where("project_id = ? AND email = ?", input.ProjectID, input.Email).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("%w: reload rating: %v", ErrDependencyFailure, err)
	}

	result := &RatingResult{Rating: stored}

	// The rating is committed at this point. A refresh failure is reported,
	// not rolled back; monitoring reconciles the aggregate later.
	if s.refresh != nil {
		if err := s.refresh(ctx); err != nil {
			log.Printf("ministry performance refresh failed after rating %s: %v", stored.ID, err)
			result.RefreshFailed = true
		}
	}

	return result, nil
}

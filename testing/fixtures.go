// Package testing provides test utilities and database setup for repository and flow tests
package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/utils"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCategory creates a category with a random name and color
func (tf *TestFixtures) CreateTestCategory(name string) (*models.Category, error) {
	if name == "" {
		name = gofakeit.LetterN(10)
	}
	category := &models.Category{Name: name, Color: gofakeit.HexColor()}
	if err := tf.DB.DB.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}
	return category, nil
}

// CreateTestLead creates a lead in the given category (nil for uncategorized)
func (tf *TestFixtures) CreateTestLead(categoryID *uuid.UUID) (*models.Lead, error) {
	lead := &models.Lead{
		Name:            gofakeit.Name(),
		CategoryID:      categoryID,
		TwitterHandle:   gofakeit.Username(),
		ProfileImageURL: utils.ToPtr(utils.DefaultProfileImageURL),
		FollowerCount:   gofakeit.Number(0, 10000),
		IsVerified:      utils.ToPtr(false),
		IsBlueVerified:  utils.ToPtr(false),
	}
	if err := tf.DB.DB.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lead: %w", err)
	}
	return lead, nil
}

// CreateTestVideo creates a completed video row without touching storage
func (tf *TestFixtures) CreateTestVideo(categoryID *uuid.UUID) (*models.Video, error) {
	video := &models.Video{
		Title:        gofakeit.Sentence(3),
		Filename:     "clip.mp4",
		Filepath:     fmt.Sprintf("%d-%d.mp4", time.Now().UnixMilli(), gofakeit.Number(0, 999)),
		Filesize:     1024,
		MimeType:     "video/mp4",
		UploadStatus: models.VideoStatusCompleted,
		CategoryID:   categoryID,
	}
	if err := tf.DB.DB.Create(video).Error; err != nil {
		return nil, fmt.Errorf("failed to create test video: %w", err)
	}
	return video, nil
}

// CreateTestActivity writes an activity log entry for userID
func (tf *TestFixtures) CreateTestActivity(userID uuid.UUID, action string, createdAt time.Time) (*models.UserActivityLog, error) {
	entry := &models.UserActivityLog{
		UserID:    userID,
		Action:    action,
		CreatedAt: createdAt,
	}
	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test activity: %w", err)
	}
	return entry, nil
}

package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/config"
	"github.com/qboxhq/qbox/internal/database"
	"github.com/qboxhq/qbox/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   168 * time.Hour,
		QuestionRateLimit:  5,
		QuestionRateWindow: 60 * time.Second,
		AutoBlockThreshold: 5,
		AutoBlockDuration:  720 * time.Hour,
	}
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedQuestion inserts a question directly, bypassing the admission check.
func seedQuestion(t *testing.T, db *gorm.DB, receiverID uuid.UUID, senderID *uuid.UUID, ip string, createdAt time.Time, flagged bool) *models.Question {
	t.Helper()

	q := models.Question{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		IsAnonymous: senderID == nil,
		Text:        "seeded question",
		IPAddress:   ip,
		IsFlagged:   flagged,
		IsHidden:    flagged,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&q).Error)
	return &q
}

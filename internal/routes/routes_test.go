package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/qboxhq/qbox/internal/config"
	"github.com/qboxhq/qbox/internal/database"
	"github.com/qboxhq/qbox/internal/handlers"
	"github.com/qboxhq/qbox/internal/models"
	"github.com/qboxhq/qbox/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   168 * time.Hour,
		QuestionRateLimit:  5,
		QuestionRateWindow: 60 * time.Second,
		AutoBlockThreshold: 5,
		AutoBlockDuration:  720 * time.Hour,
	}

	authService := services.NewAuthService(db, cfg)
	abuseService := services.NewAbuseService(db, cfg)
	questionService := services.NewQuestionService(db, abuseService)
	reportService := services.NewReportService(db, cfg, abuseService)

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewQuestionHandler(questionService),
		handlers.NewReportHandler(reportService),
		handlers.NewAdminHandler(reportService, abuseService),
	)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestAskEndpointRateLimitsPerIP(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "bob")

	ask := func(ip string) *http.Response {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(fiber.Map{"text": "Hello?", "anonymous": true}))
		req := httptest.NewRequest(http.MethodPost, "/api/users/bob/questions", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	for i := 0; i < 5; i++ {
		resp := ask("9.9.9.9")
		assert.Equal(t, http.StatusCreated, resp.StatusCode, "submission %d", i+1)
	}

	resp := ask("9.9.9.9")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var out struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &out)
	assert.Contains(t, out.Message, "too many questions")

	// A different origin IP is unaffected.
	resp = ask("8.8.8.8")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestModerateRequiresReceiver(t *testing.T) {
	app, db := newTestApp(t)
	bobToken := registerUser(t, app, "bob")
	aliceToken := registerUser(t, app, "alice")

	var bob models.User
	require.NoError(t, db.First(&bob, "username = ?", "bob").Error)
	question := models.Question{
		ReceiverID:  bob.ID,
		IsAnonymous: true,
		Text:        "Hello?",
		IPAddress:   "9.9.9.9",
	}
	require.NoError(t, db.Create(&question).Error)

	path := fmt.Sprintf("/api/questions/%s/moderate", question.ID)

	resp := doJSON(t, app, http.MethodPost, path, "", fiber.Map{"action": "flag"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, path, aliceToken, fiber.Map{"action": "flag"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, path, bobToken, fiber.Map{"action": "purge"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, path, bobToken, fiber.Map{"action": "flag"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Question
	require.NoError(t, db.First(&reloaded, "id = ?", question.ID).Error)
	assert.True(t, reloaded.IsFlagged)
	assert.True(t, reloaded.IsHidden)
}

func TestAdminSurfaceRequiresAdmin(t *testing.T) {
	app, db := newTestApp(t)
	userToken := registerUser(t, app, "alice")
	adminToken := registerUser(t, app, "root")
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "root").Update("role", "admin").Error)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/moderation", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/admin/moderation", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/admin/moderation", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Block administration
	resp = doJSON(t, app, http.MethodPost, "/api/admin/blocks", adminToken, fiber.Map{
		"ip_address": "1.2.3.4",
		"reason":     "spam",
		"hours":      "1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var block models.Block
	decodeBody(t, resp, &block)
	require.NotNil(t, block.IPAddress)
	assert.Equal(t, "1.2.3.4", *block.IPAddress)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/admin/blocks/%s/deactivate", block.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/admin/blocks", adminToken, fiber.Map{"reason": "no target"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileAndPermalinkNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	registerUser(t, app, "bob")
	resp = doJSON(t, app, http.MethodGet, "/api/users/bob/answers/deadbeef00000000", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportEndpointOpenToAnonymous(t *testing.T) {
	app, db := newTestApp(t)
	registerUser(t, app, "bob")

	var bob models.User
	require.NoError(t, db.First(&bob, "username = ?", "bob").Error)
	question := models.Question{ReceiverID: bob.ID, IsAnonymous: true, Text: "Hi?", IPAddress: "9.9.9.9"}
	require.NoError(t, db.Create(&question).Error)
	answer := models.Answer{QuestionID: question.ID, AuthorID: bob.ID, Text: "hello"}
	require.NoError(t, db.Create(&answer).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/answers/%s/report", answer.ID), "", fiber.Map{
		"reason": "rude",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var report models.AnswerReport
	decodeBody(t, resp, &report)
	assert.False(t, report.Resolved)
	assert.Nil(t, report.ReporterUserID)
}

package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAnswer(t *testing.T, svc *QuestionService, receiver *models.User, q *models.Question) *models.Answer {
	t.Helper()
	answer, err := svc.Answer(q.ID, receiver.ID, "an answer")
	require.NoError(t, err)
	return answer
}

func TestCreateReport(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	abuse := NewAbuseService(db, cfg)
	questions := NewQuestionService(db, abuse)
	reports := NewReportService(db, cfg, abuse)

	bob := createUser(t, db, "bob")
	q := seedQuestion(t, db, bob.ID, nil, "3.3.3.3", time.Now(), false)
	answer := seedAnswer(t, questions, bob, q)

	// Anonymous reporter: only the IP is recorded.
	report, err := reports.CreateReport(answer.ID, nil, "4.4.4.4", "offensive")
	require.NoError(t, err)
	assert.Nil(t, report.ReporterUserID)
	assert.Equal(t, "4.4.4.4", report.ReporterIP)
	assert.False(t, report.Resolved)

	alice := createUser(t, db, "alice")
	report, err = reports.CreateReport(answer.ID, &alice.ID, "4.4.4.5", "still offensive")
	require.NoError(t, err)
	require.NotNil(t, report.ReporterUserID)
	assert.Equal(t, alice.ID, *report.ReporterUserID)

	_, err = reports.CreateReport(uuid.New(), nil, "4.4.4.4", "ghost")
	assert.ErrorIs(t, err, ErrAnswerNotFound)

	_, err = reports.CreateReport(answer.ID, nil, "4.4.4.4", "  ")
	assert.Error(t, err)
}

func TestResolveReport_Idempotent(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	abuse := NewAbuseService(db, cfg)
	questions := NewQuestionService(db, abuse)
	reports := NewReportService(db, cfg, abuse)

	bob := createUser(t, db, "bob")
	q := seedQuestion(t, db, bob.ID, nil, "3.3.3.3", time.Now(), false)
	answer := seedAnswer(t, questions, bob, q)

	report, err := reports.CreateReport(answer.ID, nil, "4.4.4.4", "spam")
	require.NoError(t, err)

	require.NoError(t, reports.ResolveReport(report.ID))
	require.NoError(t, reports.ResolveReport(report.ID))

	var reloaded models.AnswerReport
	require.NoError(t, db.First(&reloaded, "id = ?", report.ID).Error)
	assert.True(t, reloaded.Resolved)

	assert.ErrorIs(t, reports.ResolveReport(uuid.New()), ErrReportNotFound)
}

func TestOverview(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	abuse := NewAbuseService(db, cfg)
	questions := NewQuestionService(db, abuse)
	reports := NewReportService(db, cfg, abuse)

	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	// Five flagged questions to bob from one IP: one alert line. Carol's
	// four stay below the threshold.
	for i := 0; i < 5; i++ {
		seedQuestion(t, db, bob.ID, nil, "5.5.5.5", time.Now(), true)
	}
	for i := 0; i < 4; i++ {
		seedQuestion(t, db, carol.ID, nil, "8.8.8.8", time.Now(), true)
	}

	q := seedQuestion(t, db, bob.ID, nil, "3.3.3.3", time.Now(), false)
	answer := seedAnswer(t, questions, bob, q)
	open, err := reports.CreateReport(answer.ID, nil, "4.4.4.4", "spam")
	require.NoError(t, err)
	resolved, err := reports.CreateReport(answer.ID, nil, "4.4.4.4", "handled")
	require.NoError(t, err)
	require.NoError(t, reports.ResolveReport(resolved.ID))

	_, err = abuse.CreateBlock(nil, "1.2.3.4", "manual", "")
	require.NoError(t, err)

	overview, err := reports.Overview()
	require.NoError(t, err)

	assert.Len(t, overview.FlaggedQuestions, 9)
	require.Len(t, overview.UnresolvedReports, 1)
	assert.Equal(t, open.ID, overview.UnresolvedReports[0].ID)
	assert.Len(t, overview.Blocks, 1)

	require.Len(t, overview.Alerts, 1)
	alert := overview.Alerts[0]
	assert.Equal(t, bob.ID, alert.ReceiverID)
	assert.Equal(t, "bob", alert.ReceiverUsername)
	assert.Equal(t, "5.5.5.5", alert.IPAddress)
	assert.EqualValues(t, 5, alert.FlaggedCount)
}

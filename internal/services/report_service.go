package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/config"
	"github.com/qboxhq/qbox/internal/dto"
	"github.com/qboxhq/qbox/internal/models"
	"gorm.io/gorm"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService handles answer reports and the admin moderation overview.
// Report submission is open to any visitor and carries no rate limit; only
// the reporter's identity and IP are captured for audit.
type ReportService struct {
	db    *gorm.DB
	cfg   *config.Config
	abuse *AbuseService
}

func NewReportService(db *gorm.DB, cfg *config.Config, abuse *AbuseService) *ReportService {
	return &ReportService{db: db, cfg: cfg, abuse: abuse}
}

func (s *ReportService) CreateReport(answerID uuid.UUID, reporterID *uuid.UUID, ip, reason string) (*models.AnswerReport, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.New("reason is required")
	}

	var answer models.Answer
	if err := s.db.First(&answer, "id = ?", answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	report := models.AnswerReport{
		AnswerID:       answerID,
		ReporterUserID: reporterID,
		ReporterIP:     ip,
		Reason:         reason,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// ResolveReport marks a report resolved. Resolving an already-resolved
// report is a no-op; there is no reopen path.
func (s *ReportService) ResolveReport(id uuid.UUID) error {
	var report models.AnswerReport
	if err := s.db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if report.Resolved {
		return nil
	}
	return s.db.Model(&report).Update("resolved", true).Error
}

// Overview assembles the admin moderation page: flagged questions,
// unresolved reports, all blocks, and alert lines for receiver/IP pairs at
// or above the flag threshold.
func (s *ReportService) Overview() (*dto.ModerationOverview, error) {
	var flagged []models.Question
	err := s.db.Where("is_flagged = ?", true).
		Order("created_at DESC").
		Find(&flagged).Error
	if err != nil {
		return nil, err
	}

	var reports []models.AnswerReport
	err = s.db.Where("resolved = ?", false).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	blocks, err := s.abuse.ListBlocks()
	if err != nil {
		return nil, err
	}

	alerts, err := s.flagAlerts()
	if err != nil {
		return nil, err
	}

	return &dto.ModerationOverview{
		FlaggedQuestions:  flagged,
		UnresolvedReports: reports,
		Blocks:            blocks,
		Alerts:            alerts,
	}, nil
}

func (s *ReportService) flagAlerts() ([]dto.FlagAlert, error) {
	var alerts []dto.FlagAlert
	err := s.db.Model(&models.Question{}).
		Select("questions.receiver_id, users.username AS receiver_username, questions.ip_address, COUNT(*) AS flagged_count").
		Joins("JOIN users ON users.id = questions.receiver_id").
		Where("questions.is_flagged = ?", true).
		Group("questions.receiver_id, users.username, questions.ip_address").
		Having("COUNT(*) >= ?", s.cfg.AutoBlockThreshold).
		Scan(&alerts).Error
	return alerts, err
}

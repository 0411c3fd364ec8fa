package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/config"
	"github.com/qboxhq/qbox/internal/models"
	"gorm.io/gorm"
)

var (
	ErrBlocked       = errors.New("you are not allowed to submit questions")
	ErrRateLimited   = errors.New("too many questions, please wait a minute")
	ErrBlockNotFound = errors.New("block not found")
)

// AutoBlockReason is the fixed reason recorded on auto-created blocks.
const AutoBlockReason = "auto-block: repeated flagged questions from this IP"

// AbuseService is the admission and escalation engine. Every inbound
// question passes CheckAdmission before it is persisted; every flag on an
// anonymous question passes RecordFlagged afterwards.
type AbuseService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAbuseService(db *gorm.DB, cfg *config.Config) *AbuseService {
	return &AbuseService{db: db, cfg: cfg}
}

// CheckAdmission decides whether a prospective question may be persisted.
// senderID is nil for unauthenticated submitters; an authenticated submitter
// who opted into anonymity is still matched by their real user id here.
// Returns ErrBlocked or ErrRateLimited on rejection.
func (s *AbuseService) CheckAdmission(receiverID uuid.UUID, senderID *uuid.UUID, ip string) error {
	blocked, err := s.matchActiveBlock(func(b *models.Block) bool {
		if b.UserID != nil && senderID != nil && *b.UserID == *senderID {
			return true
		}
		return b.IPAddress != nil && *b.IPAddress == ip
	})
	if err != nil {
		return fmt.Errorf("block lookup failed: %w", err)
	}
	if blocked {
		return ErrBlocked
	}

	since := time.Now().Add(-s.cfg.QuestionRateWindow)
	var count int64
	err = s.db.Model(&models.Question{}).
		Where("receiver_id = ? AND ip_address = ? AND created_at > ?", receiverID, ip, since).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("rate limit count failed: %w", err)
	}
	if count >= int64(s.cfg.QuestionRateLimit) {
		return ErrRateLimited
	}
	return nil
}

// IPBlocked reports whether an active, unexpired block matches the IP.
func (s *AbuseService) IPBlocked(ip string) (bool, error) {
	return s.matchActiveBlock(func(b *models.Block) bool {
		return b.IPAddress != nil && *b.IPAddress == ip
	})
}

// matchActiveBlock scans active blocks in load order and returns on the
// first match. Blocks found expired during the scan are deactivated in
// place rather than by a background sweep; a concurrent request performing
// the same flip is harmless.
func (s *AbuseService) matchActiveBlock(match func(*models.Block) bool) (bool, error) {
	var blocks []models.Block
	if err := s.db.Where("active = ?", true).Order("created_at").Find(&blocks).Error; err != nil {
		return false, err
	}

	now := time.Now()
	for i := range blocks {
		b := &blocks[i]
		if b.Expired(now) {
			if err := s.db.Model(b).Update("active", false).Error; err != nil {
				return false, err
			}
			continue
		}
		if match(b) {
			return true, nil
		}
	}
	return false, nil
}

// RecordFlagged runs the escalation check after a flag on an anonymous
// question. Once the count of flagged questions from the IP reaches the
// threshold, a 30-day IP block is created; an existing active block for the
// IP suppresses the creation, so crossing the threshold fires at most once.
func (s *AbuseService) RecordFlagged(ip string) error {
	var count int64
	err := s.db.Model(&models.Question{}).
		Where("ip_address = ? AND is_flagged = ?", ip, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("flagged count failed: %w", err)
	}
	if count < int64(s.cfg.AutoBlockThreshold) {
		return nil
	}

	blocked, err := s.IPBlocked(ip)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}

	expires := time.Now().Add(s.cfg.AutoBlockDuration)
	block := models.Block{
		IPAddress: &ip,
		Reason:    AutoBlockReason,
		ExpiresAt: &expires,
		Active:    true,
	}
	if err := s.db.Create(&block).Error; err != nil {
		return fmt.Errorf("failed to create auto-block: %w", err)
	}
	slog.Info("auto-block created", "ip", ip, "flagged_count", count)
	return nil
}

// CreateBlock creates an admin block. hours is the time until expiry; an
// empty or unparseable value creates an indefinite block.
func (s *AbuseService) CreateBlock(userID *uuid.UUID, ip, reason, hours string) (*models.Block, error) {
	block := models.Block{
		UserID: userID,
		Reason: reason,
		Active: true,
	}
	if ip != "" {
		block.IPAddress = &ip
	}
	if h, err := strconv.Atoi(hours); err == nil && h > 0 {
		expires := time.Now().Add(time.Duration(h) * time.Hour)
		block.ExpiresAt = &expires
	}

	if err := s.db.Create(&block).Error; err != nil {
		return nil, fmt.Errorf("failed to create block: %w", err)
	}
	return &block, nil
}

// DeactivateBlock flips a block inactive. Deactivating an already-inactive
// block is a no-op.
func (s *AbuseService) DeactivateBlock(id uuid.UUID) error {
	var block models.Block
	if err := s.db.First(&block, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		return err
	}
	if !block.Active {
		return nil
	}
	return s.db.Model(&block).Update("active", false).Error
}

func (s *AbuseService) ListBlocks() ([]models.Block, error) {
	var blocks []models.Block
	err := s.db.Order("created_at DESC").Find(&blocks).Error
	return blocks, err
}

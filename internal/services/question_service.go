package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/dto"
	"github.com/qboxhq/qbox/internal/models"
	"gorm.io/gorm"
)

var (
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAnswerNotFound      = errors.New("answer not found")
	ErrNotQuestionReceiver = errors.New("only the receiver may act on this question")
	ErrInvalidAction       = errors.New("invalid moderation action")
)

const maxQuestionLen = 500

// QuestionService handles the ask/answer lifecycle and receiver moderation
// actions. Submissions pass through the abuse engine before persistence.
type QuestionService struct {
	db    *gorm.DB
	abuse *AbuseService
}

func NewQuestionService(db *gorm.DB, abuse *AbuseService) *QuestionService {
	return &QuestionService{db: db, abuse: abuse}
}

// Ask submits a question to the named receiver. senderID is nil for
// unauthenticated visitors, who are always anonymous; authenticated senders
// may opt into anonymity, which hides their identity from the receiver but
// not from abuse control.
func (s *QuestionService) Ask(receiverUsername string, senderID *uuid.UUID, anonymous bool, text, ip string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxQuestionLen {
		return nil, errors.New("question text must be 1-500 characters")
	}

	var receiver models.User
	if err := s.db.Where("username = ?", receiverUsername).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Block-matching sees the submitter's real user id even when they opted
	// into anonymity; only the persisted sender reference is withheld.
	if err := s.abuse.CheckAdmission(receiver.ID, senderID, ip); err != nil {
		return nil, err
	}

	isAnonymous := senderID == nil || anonymous
	storedSender := senderID
	if isAnonymous {
		storedSender = nil
	}

	question := models.Question{
		SenderID:    storedSender,
		ReceiverID:  receiver.ID,
		IsAnonymous: isAnonymous,
		Text:        text,
		IPAddress:   ip,
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return &question, nil
}

// Inbox returns the receiver's unanswered, non-hidden questions, newest first.
func (s *QuestionService) Inbox(userID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Preload("Sender").
		Where("receiver_id = ? AND is_hidden = ?", userID, false).
		Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)").
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

// Answer records the receiver's answer to a question. A question is answered
// at most once; answering an already-answered question returns the existing
// answer without creating a second row.
func (s *QuestionService) Answer(questionID, authorID uuid.UUID, text string) (*models.Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("answer text is required")
	}

	var question models.Question
	if err := s.db.First(&question, "id = ?", questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if question.ReceiverID != authorID {
		return nil, ErrNotQuestionReceiver
	}

	var existing models.Answer
	if err := s.db.First(&existing, "question_id = ?", questionID).Error; err == nil {
		return &existing, nil
	}

	answer := models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Text:       text,
	}
	if err := s.db.Create(&answer).Error; err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}
	return &answer, nil
}

// Moderate applies a receiver action to a question. "hide" removes the
// question from the inbox; "flag" additionally marks it flagged and, for
// anonymous-origin questions, feeds the IP escalation check. Neither flag is
// ever cleared.
func (s *QuestionService) Moderate(questionID, actorID uuid.UUID, action string) error {
	if action != "hide" && action != "flag" {
		return ErrInvalidAction
	}

	var question models.Question
	if err := s.db.First(&question, "id = ?", questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	if question.ReceiverID != actorID {
		return ErrNotQuestionReceiver
	}

	updates := map[string]interface{}{"is_hidden": true}
	if action == "flag" {
		updates["is_flagged"] = true
	}
	if err := s.db.Model(&question).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	if action == "flag" && question.SenderID == nil {
		return s.abuse.RecordFlagged(question.IPAddress)
	}
	return nil
}

// Feed returns published answers, newest first.
func (s *QuestionService) Feed(page, limit int) ([]dto.FeedItem, int64, error) {
	var answers []models.Answer
	var total int64

	offset := (page - 1) * limit

	if err := s.db.Model(&models.Answer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Preload("Question").Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&answers).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.FeedItem, len(answers))
	for i, a := range answers {
		items[i] = dto.FeedItem{
			QuestionText: a.Question.Text,
			IsAnonymous:  a.Question.IsAnonymous,
			AnswerText:   a.Text,
			PublicID:     a.PublicID,
			Author:       a.Author.Username,
			AnsweredAt:   a.CreatedAt,
		}
	}
	return items, total, nil
}

// Profile returns a user and their published answers, newest first.
func (s *QuestionService) Profile(username string) (*models.User, []models.Answer, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	var answers []models.Answer
	err := s.db.Preload("Question").
		Where("author_id = ?", user.ID).
		Order("created_at DESC").
		Find(&answers).Error
	if err != nil {
		return nil, nil, err
	}
	return &user, answers, nil
}

// Permalink resolves an answer by its author's username and public token.
func (s *QuestionService) Permalink(username, publicID string) (*models.Answer, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var answer models.Answer
	err := s.db.Preload("Question").Preload("Author").
		Where("public_id = ? AND author_id = ?", publicID, user.ID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return &answer, nil
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/qboxhq/qbox/internal/dto"
	"github.com/qboxhq/qbox/internal/middleware"
	"github.com/qboxhq/qbox/internal/models"
	"github.com/qboxhq/qbox/internal/services"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Ask submits a question to the profile named in the path. Open to anonymous
// visitors; rejected submissions surface the admission error message.
func (h *QuestionHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	senderID := middleware.OptionalUserID(c)
	ip := middleware.ClientIP(c)

	question, err := h.questionService.Ask(c.Params("username"), senderID, req.Anonymous, req.Text, ip)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrBlocked), errors.Is(err, services.ErrRateLimited):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your question has been submitted!",
		"id":      question.ID,
	})
}

func (h *QuestionHandler) Inbox(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	questions, err := h.questionService.Inbox(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch inbox",
		})
	}

	items := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		items[i] = questionResponse(&q)
	}
	return c.JSON(fiber.Map{
		"questions": items,
		"count":     len(items),
	})
}

func (h *QuestionHandler) Answer(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	questionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid question ID",
		})
	}

	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	answer, err := h.questionService.Answer(questionID, userID, req.Text)
	if err != nil {
		return questionErrorStatus(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(answer)
}

// Moderate applies a hide or flag action to one of the caller's received
// questions.
func (h *QuestionHandler) Moderate(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	questionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid question ID",
		})
	}

	var req dto.ModerateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.questionService.Moderate(questionID, userID, req.Action); err != nil {
		return questionErrorStatus(c, err)
	}

	return c.JSON(fiber.Map{"message": "Question updated"})
}

func (h *QuestionHandler) Feed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	items, total, err := h.questionService.Feed(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch feed",
		})
	}

	return c.JSON(fiber.Map{
		"answers": items,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *QuestionHandler) Profile(c *fiber.Ctx) error {
	user, answers, err := h.questionService.Profile(c.Params("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile",
		})
	}

	items := make([]dto.FeedItem, len(answers))
	for i, a := range answers {
		items[i] = dto.FeedItem{
			QuestionText: a.Question.Text,
			IsAnonymous:  a.Question.IsAnonymous,
			AnswerText:   a.Text,
			PublicID:     a.PublicID,
			Author:       user.Username,
			AnsweredAt:   a.CreatedAt,
		}
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"username":   user.Username,
			"bio":        user.Bio,
			"avatar_url": user.AvatarURL,
		},
		"answers": items,
	})
}

func (h *QuestionHandler) Permalink(c *fiber.Ctx) error {
	answer, err := h.questionService.Permalink(c.Params("username"), c.Params("public_id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrAnswerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Answer not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch answer",
		})
	}

	return c.JSON(dto.FeedItem{
		QuestionText: answer.Question.Text,
		IsAnonymous:  answer.Question.IsAnonymous,
		AnswerText:   answer.Text,
		PublicID:     answer.PublicID,
		Author:       answer.Author.Username,
		AnsweredAt:   answer.CreatedAt,
	})
}

func questionResponse(q *models.Question) dto.QuestionResponse {
	resp := dto.QuestionResponse{
		ID:          q.ID,
		Text:        q.Text,
		IsAnonymous: q.IsAnonymous,
		CreatedAt:   q.CreatedAt,
	}
	if !q.IsAnonymous && q.Sender != nil {
		resp.SenderName = q.Sender.Username
	}
	return resp
}

func questionErrorStatus(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrQuestionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotQuestionReceiver):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
}

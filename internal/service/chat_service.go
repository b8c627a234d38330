package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digi0/ACE/internal/advisor"
	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/ulid"
	"github.com/digi0/ACE/internal/repository"
	"github.com/digi0/ACE/internal/risk"
)

const titleWords = 6

// ModelGateway is the single bounded model call used for each chat turn.
type ModelGateway interface {
	GetModelAnswer(ctx context.Context, systemInstruction string, transcript []models.Message, latest string) (string, error)
}

// PolicySource exposes the current vault snapshot.
type PolicySource interface {
	List() []models.Policy
}

// ChatService runs the per-turn pipeline and owns the chat lifecycle.
type ChatService interface {
	// SendMessage appends text to chatID (or a new chat when chatID is empty),
	// obtains an answer and persists both messages. Model failures never
	// surface as errors.
	SendMessage(ctx context.Context, user *models.User, chatID, text string) (string, *models.StructuredResponse, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error)
	GetChat(ctx context.Context, userID uuid.UUID, chatID string) (*models.ChatSession, error)
	DeleteChat(ctx context.Context, userID uuid.UUID, chatID string) error
}

// ChatOptions toggles optional pipeline checks.
type ChatOptions struct {
	RequireProfile bool
}

type chatService struct {
	chats      repository.ChatRepository
	gateway    ModelGateway
	classifier *risk.Classifier
	policies   PolicySource
	opts       ChatOptions
	now        func() time.Time
	logger     *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(
	chats repository.ChatRepository,
	gateway ModelGateway,
	classifier *risk.Classifier,
	policies PolicySource,
	opts ChatOptions,
	logger *slog.Logger,
) ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		chats:      chats,
		gateway:    gateway,
		classifier: classifier,
		policies:   policies,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// ChatTitle returns the first six words of message, with "..." appended when
// the message is longer.
func ChatTitle(message string) string {
	words := strings.Fields(message)
	if len(words) <= titleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWords], " ") + "..."
}

func (s *chatService) SendMessage(ctx context.Context, user *models.User, chatID, text string) (string, *models.StructuredResponse, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, apierrors.NewValidationError("message", "message cannot be empty")
	}
	if s.opts.RequireProfile && !user.ProfileComplete {
		return "", nil, apierrors.ErrProfileIncomplete
	}

	var chat *models.ChatSession
	if chatID != "" {
		var err error
		chat, err = s.ownedChat(ctx, user.ID, chatID)
		if err != nil {
			return "", nil, err
		}
	} else {
		now := s.now().UTC()
		chat = &models.ChatSession{
			ID:        ulid.NewFromTime(now),
			UserID:    user.ID,
			Title:     ChatTitle(text),
			Messages:  []models.Message{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			return "", nil, fmt.Errorf("create chat: %w", err)
		}
	}

	prior := chat.Messages
	messages := make([]models.Message, 0, len(prior)+2)
	messages = append(messages, prior...)
	messages = append(messages, models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: s.now().UTC(),
	})

	resp := s.answer(ctx, user, prior, text)

	messages = append(messages, models.Message{
		Role:               models.RoleAssistant,
		Content:            resp.DirectAnswer,
		Timestamp:          s.now().UTC(),
		StructuredResponse: resp,
	})

	if err := s.chats.UpdateMessages(ctx, chat.ID, messages, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted while the model call was running.
			return "", nil, apierrors.ErrChatNotFound
		}
		return "", nil, fmt.Errorf("save chat: %w", err)
	}
	return chat.ID, resp, nil
}

// answer calls the model, normalizes the result or substitutes the safe
// harbor, then applies the risk override.
func (s *chatService) answer(ctx context.Context, user *models.User, prior []models.Message, text string) *models.StructuredResponse {
	system := advisor.BuildSystemInstruction(s.policies.List(), user.Profile)

	var resp *models.StructuredResponse
	raw, err := s.gateway.GetModelAnswer(ctx, system, prior, text)
	if err != nil {
		modelCallsTotal.WithLabelValues(outcomeUnavailable).Inc()
		resp = advisor.SafeHarbor()
	} else {
		var parsed bool
		resp, parsed = advisor.NormalizeChecked(raw)
		if parsed {
			modelCallsTotal.WithLabelValues(outcomeOK).Inc()
		} else {
			modelCallsTotal.WithLabelValues(outcomeMalformed).Inc()
			s.logger.Warn("model output was not valid JSON", slog.Int("length", len(raw)))
		}
	}

	verdict := s.classifier.Classify(text, resp.DirectAnswer)
	reported := resp.RiskLevel
	if risk.Apply(resp, verdict) {
		riskEscalationsTotal.WithLabelValues(string(resp.RiskLevel)).Inc()
		s.logger.Info("risk tier raised",
			slog.String("user_id", user.ID.String()),
			slog.String("rule", verdict.RuleID),
			slog.String("keyword", verdict.Keyword),
			slog.String("reported", string(reported)),
			slog.String("final", string(resp.RiskLevel)),
		)
	}
	return resp
}

func (s *chatService) ownedChat(ctx context.Context, userID uuid.UUID, chatID string) (*models.ChatSession, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat.UserID != userID {
		return nil, apierrors.ErrChatNotFound
	}
	return chat, nil
}

func (s *chatService) ListChats(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *chatService) GetChat(ctx context.Context, userID uuid.UUID, chatID string) (*models.ChatSession, error) {
	return s.ownedChat(ctx, userID, chatID)
}

func (s *chatService) DeleteChat(ctx context.Context, userID uuid.UUID, chatID string) error {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.ErrChatNotFound
		}
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// Compile-time check to ensure chatService implements ChatService.
var _ ChatService = (*chatService)(nil)

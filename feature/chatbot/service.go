package chatbot

import (
	"context"
	"errors"
	"sort"
	"strings"

	"portfolio-api/core/cache"
	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FallbackReply is sent when no keyword matches.
const FallbackReply = "Sorry, I don't understand your question."

// DefaultHistoryLimit is used when the caller does not pass a limit.
const DefaultHistoryLimit = 50

const activeConfigKey = "active"

// ErrNoConfig is returned when there is no active config.
var ErrNoConfig = errors.New("no active chatbot config")

// Service answers chat messages and manages the bot config.
type Service struct {
	db       *gorm.DB
	messages *repository.Repository[Message]
	configs  *repository.Repository[BotConfig]
	cache    *cache.Cache[*BotConfig]
	logger   *zap.Logger
}

// NewService creates a new chatbot service.
func NewService(db *gorm.DB, cacheCfg cache.Config, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		messages: repository.New[Message](db),
		configs:  repository.New[BotConfig](db),
		cache:    cache.New[*BotConfig](cacheCfg.TTL()),
		logger:   logger,
	}
}

// Process stores the visitor message, picks a reply and stores it too.
// A session id is generated when none is given.
func (s *Service) Process(ctx context.Context, req MessageRequest) (*Reply, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	if err := s.messages.Create(ctx, &Message{Content: req.Message, Kind: KindUser, SessionID: req.SessionID}); err != nil {
		return nil, err
	}

	answer := FallbackReply
	cfg, err := s.ActiveConfig(ctx)
	switch {
	case err == nil:
		answer = Match(cfg.Responses, req.Message)
	case errors.Is(err, ErrNoConfig):
		s.logger.Debug("No active chatbot config, using fallback reply")
	default:
		return nil, err
	}

	bot := &Message{Content: answer, Kind: KindBot, SessionID: req.SessionID}
	if err := s.messages.Create(ctx, bot); err != nil {
		return nil, err
	}
	return &Reply{Reply: answer, SessionID: req.SessionID, Message: bot}, nil
}

// History returns the newest messages of a session, newest first.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.messages.List(ctx, repository.Filter{
		Where: map[string]any{"session_id": sessionID},
		Order: "created_at desc, id desc",
		Limit: limit,
	})
}

// ActiveConfig returns the active config, served from cache while fresh.
func (s *Service) ActiveConfig(ctx context.Context) (*BotConfig, error) {
	return s.cache.GetOrLoad(ctx, activeConfigKey, func(ctx context.Context) (*BotConfig, error) {
		cfg, err := s.configs.First(ctx, repository.Filter{
			Where: map[string]any{"active": true},
			Order: "id",
		})
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoConfig
		}
		return cfg, err
	})
}

// UpdateConfig applies a partial update and drops the cached config.
func (s *Service) UpdateConfig(ctx context.Context, id uint, in ConfigInput) (*BotConfig, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.WelcomeMessage != nil {
		fields["welcome_message"] = *in.WelcomeMessage
	}
	if in.Responses != nil {
		fields["responses"] = in.Responses
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}

	cfg, err := s.configs.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(activeConfigKey)
	s.logger.Info("Chatbot config updated", zap.Uint("id", id))
	return cfg, nil
}

// EnsureDefaultConfig creates a starter config when the table is empty.
func (s *Service) EnsureDefaultConfig(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&BotConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.configs.Create(ctx, &BotConfig{
		Name:           "default",
		WelcomeMessage: "Hi! How can we help you?",
		Responses: Responses{
			"contact":  "You can reach us through the contact form.",
			"price":    "Prices depend on the project. Send us a message and we will prepare a quote.",
			"services": "Take a look at the services section to see what we offer.",
		},
		Active: true,
	})
}

// Match returns the reply of the first keyword, in sorted order, contained in
// message (case-insensitive), or FallbackReply.
func Match(responses Responses, message string) string {
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lower := strings.ToLower(message)
	for _, k := range keys {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return responses[k]
		}
	}
	return FallbackReply
}

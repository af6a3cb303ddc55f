package application

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/P-Jays/crypto-telegram-bot/core/settings/domain"
	"github.com/P-Jays/crypto-telegram-bot/core/settings/infrastructure"
)

type SettingsService struct {
	repo domain.ISettingsRepository
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		repo: infrastructure.NewChatSettingsGormRepository(db),
	}
}

// NewSettingsServiceWithRepo is used by tests to inject a stub store.
func NewSettingsServiceWithRepo(repo domain.ISettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) InitSchema(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

// GetOrDefault returns the chat's stored preferences, filling absent
// fields with defaults. Read errors degrade to pure defaults: settings
// must never block a price answer.
func (s *SettingsService) GetOrDefault(ctx context.Context, chatID int64) domain.ChatSettings {
	out := domain.ChatSettings{
		ChatID:          chatID,
		PreferredChain:  domain.DefaultPreferredChain,
		InsightProvider: domain.DefaultInsightProvider,
	}

	stored, err := s.repo.Get(ctx, chatID)
	if err != nil || stored == nil {
		return out
	}
	if stored.PreferredChain != "" {
		out.PreferredChain = stored.PreferredChain
	}
	if stored.InsightProvider != "" {
		out.InsightProvider = stored.InsightProvider
	}
	return out
}

func (s *SettingsService) SetPreferredChain(ctx context.Context, chatID int64, chain string) error {
	current := s.GetOrDefault(ctx, chatID)
	current.PreferredChain = strings.ToLower(strings.TrimSpace(chain))
	return s.repo.Set(ctx, current)
}

func (s *SettingsService) SetInsightProvider(ctx context.Context, chatID int64, provider string) error {
	current := s.GetOrDefault(ctx, chatID)
	current.InsightProvider = strings.ToLower(strings.TrimSpace(provider))
	return s.repo.Set(ctx, current)
}

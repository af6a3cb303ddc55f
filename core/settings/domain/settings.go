package domain

import "context"

// ChatSettings represents per-conversation preferences stored in the
// database.
type ChatSettings struct {
	ChatID          int64
	PreferredChain  string
	InsightProvider string
}

// ISettingsRepository defines the contract for persisting chat settings.
type ISettingsRepository interface {
	Get(ctx context.Context, chatID int64) (*ChatSettings, error)
	Set(ctx context.Context, s ChatSettings) error
	Delete(ctx context.Context, chatID int64) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Defaults applied when a chat has no stored record.
const (
	DefaultPreferredChain  = "ethereum"
	DefaultInsightProvider = "auto"
)

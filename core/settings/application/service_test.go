package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/P-Jays/crypto-telegram-bot/core/settings/domain"
)

func newTestService(t *testing.T) *SettingsService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := NewSettingsService(db)
	require.NoError(t, svc.InitSchema(context.Background()))
	return svc
}

func TestGetOrDefaultUnknownChat(t *testing.T) {
	svc := newTestService(t)

	got := svc.GetOrDefault(context.Background(), 42)
	assert.Equal(t, domain.DefaultPreferredChain, got.PreferredChain)
	assert.Equal(t, domain.DefaultInsightProvider, got.InsightProvider)
}

func TestSetAndReadBack(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetInsightProvider(ctx, 42, "Gemini"))
	require.NoError(t, svc.SetPreferredChain(ctx, 42, "Base"))

	got := svc.GetOrDefault(ctx, 42)
	assert.Equal(t, "gemini", got.InsightProvider)
	assert.Equal(t, "base", got.PreferredChain)

	// Another chat is untouched.
	other := svc.GetOrDefault(ctx, 7)
	assert.Equal(t, domain.DefaultInsightProvider, other.InsightProvider)
}

func TestPartialUpdateKeepsOtherField(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetInsightProvider(ctx, 9, "openai"))
	require.NoError(t, svc.SetPreferredChain(ctx, 9, "polygon"))

	got := svc.GetOrDefault(ctx, 9)
	assert.Equal(t, "openai", got.InsightProvider)
	assert.Equal(t, "polygon", got.PreferredChain)
}

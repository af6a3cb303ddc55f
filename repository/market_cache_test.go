package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
)

func newTestRepo(t *testing.T) *MarketCacheGormRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewMarketCacheGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo
}

func TestMarketCache_PutGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := token.MarketSnapshot{
		ID:        "wrapped-bitcoin",
		Symbol:    "wbtc",
		Name:      "Wrapped Bitcoin",
		Price:     64250.5,
		MarketCap: 1e10,
		Volume24h: 5e8,
	}
	require.NoError(t, repo.Put(ctx, "wbtc", snap, time.Minute))

	got, ok, err := repo.Get(ctx, "wbtc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap, *got)
}

func TestMarketCache_MissOnUnknownKey(t *testing.T) {
	repo := newTestRepo(t)

	_, ok, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarketCache_ExpiredRowIsMiss(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "btc", token.MarketSnapshot{ID: "bitcoin"}, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := repo.Get(ctx, "btc")
	require.NoError(t, err)
	assert.False(t, ok, "a row with a past TTL timestamp must be invalid")
}

func TestMarketCache_UpsertRefreshes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "eth", token.MarketSnapshot{ID: "ethereum", Price: 1}, time.Minute))
	require.NoError(t, repo.Put(ctx, "eth", token.MarketSnapshot{ID: "ethereum", Price: 2}, time.Minute))

	got, ok, err := repo.Get(ctx, "eth")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Price)
}

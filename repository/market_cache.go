package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
)

// MarketCacheModel is one durable cache row: a JSON payload plus the
// TTL timestamp deciding its validity. The store never auto-expires;
// readers compare expires_at against the clock.
type MarketCacheModel struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Payload   string    `gorm:"column:payload"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (MarketCacheModel) TableName() string {
	return "market_cache"
}

type MarketCacheGormRepository struct {
	db *gorm.DB
}

func NewMarketCacheGormRepository(db *gorm.DB) *MarketCacheGormRepository {
	return &MarketCacheGormRepository{db: db}
}

func (r *MarketCacheGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&MarketCacheModel{})
}

// Get returns the cached snapshot for key if the row exists and its TTL
// timestamp is still in the future. Stale rows are treated as misses
// and left for the next Put to overwrite.
func (r *MarketCacheGormRepository) Get(ctx context.Context, key string) (*token.MarketSnapshot, bool, error) {
	var m MarketCacheModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if time.Now().After(m.ExpiresAt) {
		return nil, false, nil
	}

	var snap token.MarketSnapshot
	if err := json.Unmarshal([]byte(m.Payload), &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// Put upserts the snapshot with a fresh TTL timestamp.
func (r *MarketCacheGormRepository) Put(ctx context.Context, key string, snap token.MarketSnapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload":    string(payload),
			"expires_at": time.Now().Add(ttl),
		}),
	}).Create(&MarketCacheModel{
		Key:       key,
		Payload:   string(payload),
		ExpiresAt: time.Now().Add(ttl),
	}).Error
}

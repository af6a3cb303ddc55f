package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/P-Jays/crypto-telegram-bot/core/settings/domain"
)

type ChatSettingModel struct {
	ChatID          int64  `gorm:"primaryKey;column:chat_id"`
	PreferredChain  string `gorm:"column:preferred_chain"`
	InsightProvider string `gorm:"column:insight_provider"`
}

func (ChatSettingModel) TableName() string {
	return "chat_settings"
}

type ChatSettingsGormRepository struct {
	db *gorm.DB
}

func NewChatSettingsGormRepository(db *gorm.DB) *ChatSettingsGormRepository {
	return &ChatSettingsGormRepository{db: db}
}

func (r *ChatSettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ChatSettingModel{})
}

func (r *ChatSettingsGormRepository) Get(ctx context.Context, chatID int64) (*domain.ChatSettings, error) {
	var m ChatSettingModel
	if err := r.db.WithContext(ctx).First(&m, "chat_id = ?", chatID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &domain.ChatSettings{
		ChatID:          m.ChatID,
		PreferredChain:  m.PreferredChain,
		InsightProvider: m.InsightProvider,
	}, nil
}

func (r *ChatSettingsGormRepository) Set(ctx context.Context, s domain.ChatSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"preferred_chain":  s.PreferredChain,
			"insight_provider": s.InsightProvider,
		}),
	}).Create(&ChatSettingModel{
		ChatID:          s.ChatID,
		PreferredChain:  s.PreferredChain,
		InsightProvider: s.InsightProvider,
	}).Error
}

func (r *ChatSettingsGormRepository) Delete(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).Delete(&ChatSettingModel{}, "chat_id = ?", chatID).Error
}

package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/core/config"
	"github.com/P-Jays/crypto-telegram-bot/core/settings/application"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	"github.com/P-Jays/crypto-telegram-bot/pkg/callback"
	"github.com/P-Jays/crypto-telegram-bot/pkg/ratelimit"
)

const callbackTTL = 10 * time.Minute

// callbackAction is the structured payload behind an inline-keyboard
// button. Telegram caps callback data at 64 bytes, so buttons carry
// only the store's opaque id.
type callbackAction struct {
	Kind  string // set_provider | set_chain
	Value string
}

// Bot is the long-polling Telegram surface.
type Bot struct {
	api       *tgbotapi.BotAPI
	service   token.ITokenUsecase
	settings  *application.SettingsService
	governor  *ratelimit.Governor
	callbacks *callback.Store[callbackAction]
	rateOn    bool
}

func NewBot(cfg *config.Config, service token.ITokenUsecase, settings *application.SettingsService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Telegram.Debug

	return &Bot{
		api:       api,
		service:   service,
		settings:  settings,
		governor:  ratelimit.NewGovernor(0, 0, 0), // package defaults
		callbacks: callback.NewStore[callbackAction](callbackTTL),
		rateOn:    cfg.RateLimit.Enabled,
	}, nil
}

// Run consumes updates until ctx is cancelled. Every inbound action
// passes the rate governor before any other work.
func (b *Bot) Run(ctx context.Context) {
	logrus.Infof("[TELEGRAM] Authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[TELEGRAM] Panic handling update: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		chatID := update.CallbackQuery.Message.Chat.ID
		if !b.admit(chatID) {
			b.answerCallback(update.CallbackQuery.ID, "Slow down a little.")
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		chatID := update.Message.Chat.ID
		if !b.admitWithReply(chatID) {
			return
		}
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) admit(chatID int64) bool {
	if !b.rateOn {
		return true
	}
	return b.governor.Admit(chatID).Allowed
}

// admitWithReply runs admission and tells the user why they were
// denied, mirroring the governor's two deny reasons.
func (b *Bot) admitWithReply(chatID int64) bool {
	if !b.rateOn {
		return true
	}
	d := b.governor.Admit(chatID)
	if d.Allowed {
		return true
	}
	if d.Reason == ratelimit.ReasonExhausted {
		secs := int(d.RetryAfter.Milliseconds()+999) / 1000
		b.reply(chatID, formatRateLimited(secs))
	} else {
		b.reply(chatID, "Slow down a little and try again.")
	}
	return false
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		logrus.WithError(err).Warn("[TELEGRAM] Failed to send message")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cb); err != nil {
		logrus.WithError(err).Warn("[TELEGRAM] Failed to answer callback")
	}
}

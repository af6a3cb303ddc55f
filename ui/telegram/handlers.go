package telegram

import (
	"context"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
)

const startText = `Welcome! Send me a token symbol, name or contract address
and I will look up its price and market data.

Commands:
/price <query> - price and market snapshot
/safety <query> - AI safety assessment
/settings - per-chat preferences
/help - this message`

// tickerRe matches free text worth treating as a price query: a short
// symbol, optionally $-prefixed.
var tickerRe = regexp.MustCompile(`^\$?[A-Za-z0-9]{2,12}$`)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, startText)
	case "price":
		b.handlePrice(ctx, msg.Chat.ID, msg.CommandArguments())
	case "safety":
		b.handleSafety(ctx, msg.Chat.ID, msg.CommandArguments())
	case "settings":
		b.handleSettings(ctx, msg.Chat.ID)
	case "":
		if looksLikeToken(text) {
			b.handlePrice(ctx, msg.Chat.ID, strings.TrimPrefix(text, "$"))
		} else {
			b.reply(msg.Chat.ID, "I did not get that. Try /price <symbol> or /help.")
		}
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// looksLikeToken decides whether bare text is a token reference:
// contract addresses always, plus short ticker-shaped words.
func looksLikeToken(text string) bool {
	if token.IsEVMAddress(text) {
		return true
	}
	return tickerRe.MatchString(text)
}

func (b *Bot) handlePrice(ctx context.Context, chatID int64, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		b.reply(chatID, "Usage: /price <symbol or address>")
		return
	}

	snap, err := b.service.Snapshot(ctx, query)
	if err != nil {
		b.reply(chatID, formatError(query, err))
		return
	}
	b.reply(chatID, formatSnapshot(snap))
}

func (b *Bot) handleSafety(ctx context.Context, chatID int64, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		b.reply(chatID, "Usage: /safety <symbol or address>")
		return
	}

	provider := b.settings.GetOrDefault(ctx, chatID).InsightProvider
	report, err := b.service.Safety(ctx, query, provider)
	if err != nil {
		b.reply(chatID, formatError(query, err))
		return
	}
	b.reply(chatID, formatSafetyReport(report))
}

// handleSettings renders the preferences keyboard. Structured payloads
// go through the one-shot callback store; the button data is only the
// opaque id.
func (b *Bot) handleSettings(ctx context.Context, chatID int64) {
	current := b.settings.GetOrDefault(ctx, chatID)

	providerRow := make([]tgbotapi.InlineKeyboardButton, 0, 3)
	for _, p := range []string{insight.ProviderOpenAI, insight.ProviderGemini, insight.ProviderAuto} {
		label := p
		if p == current.InsightProvider {
			label = "• " + p
		}
		id := b.callbacks.Put(callbackAction{Kind: "set_provider", Value: p}, callbackTTL)
		providerRow = append(providerRow, tgbotapi.NewInlineKeyboardButtonData(label, id))
	}

	chainRow := make([]tgbotapi.InlineKeyboardButton, 0, 3)
	for _, c := range []string{"ethereum", "base", "binance-smart-chain"} {
		label := c
		if c == current.PreferredChain {
			label = "• " + c
		}
		id := b.callbacks.Put(callbackAction{Kind: "set_chain", Value: c}, callbackTTL)
		chainRow = append(chainRow, tgbotapi.NewInlineKeyboardButtonData(label, id))
	}

	msg := tgbotapi.NewMessage(chatID, "Settings\n\nInsight provider / preferred chain:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(providerRow, chainRow)
	if _, err := b.api.Send(msg); err != nil {
		logrus.WithError(err).Warn("[TELEGRAM] Failed to send settings keyboard")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	action, ok := b.callbacks.Take(cq.Data)
	if !ok {
		b.answerCallback(cq.ID, "This menu expired, send /settings again.")
		return
	}

	chatID := cq.Message.Chat.ID
	var err error
	switch action.Kind {
	case "set_provider":
		err = b.settings.SetInsightProvider(ctx, chatID, action.Value)
	case "set_chain":
		err = b.settings.SetPreferredChain(ctx, chatID, action.Value)
	default:
		b.answerCallback(cq.ID, "Unknown action.")
		return
	}

	if err != nil {
		logrus.WithError(err).Error("[TELEGRAM] Failed to store setting")
		b.answerCallback(cq.ID, "Could not save that, try again.")
		return
	}
	b.answerCallback(cq.ID, "Saved: "+action.Value)
}

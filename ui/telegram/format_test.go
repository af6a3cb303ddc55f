package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

func TestLooksLikeToken(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"btc", true},
		{"$PEPE", true},
		{"0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", true},
		{"what is the weather", false},
		{"a", false},
		{"averylongwordthatisnotaticker", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, looksLikeToken(tc.in), tc.in)
	}
}

func TestFormatSnapshot(t *testing.T) {
	liq := 71.5
	s := token.MarketSnapshot{
		Name:           "Bitcoin",
		Symbol:         "btc",
		Price:          64123.55,
		MarketCap:      1_260_000_000_000,
		Volume24h:      32_000_000_000,
		LiquidityScore: &liq,
	}

	got := formatSnapshot(s)
	assert.Contains(t, got, "*Bitcoin* (BTC)")
	assert.Contains(t, got, "$64,123.55")
	assert.Contains(t, got, "1,260,000,000,000")
	assert.Contains(t, got, "Liquidity score: 71.5")
}

func TestFormatPriceMicroCap(t *testing.T) {
	assert.Equal(t, "$0.00000123", formatPrice(0.00000123))
	assert.Equal(t, "$0.4200", formatPrice(0.42))
	assert.Equal(t, "n/a", formatPrice(0))
}

func TestFormatSafetyReportBadges(t *testing.T) {
	r := token.SafetyReport{
		Query:   "pepe",
		Resolve: &token.ResolveResult{Address: "0x6982508145454Ce325dDbE47a25d4ec3d2311933", Source: token.SourceDexPair},
		Insight: insight.Insight{Score: 82, Explanation: "Deep liquidity.", Provider: "openai"},
	}

	got := formatSafetyReport(r)
	assert.Contains(t, got, "🟢")
	assert.Contains(t, got, "*82/100*")
	assert.Contains(t, got, "_source: openai_")

	r.Insight.Score = 15
	assert.Contains(t, formatSafetyReport(r), "🔴")
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, formatError("xyz", pkgError.NotFoundError("nope")), "could not find")
	assert.Contains(t, formatError("xyz", pkgError.UpstreamError("down")), "having trouble")
	assert.Contains(t, formatError("xyz", assert.AnError), "Something went wrong")
}

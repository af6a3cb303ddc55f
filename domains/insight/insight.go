package insight

import (
	"context"
	"strconv"
	"strings"
)

// Provider identifiers. ProviderAuto lets the service pick.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
	ProviderAuto      = "auto"
)

// TokenRef identifies the token an insight is about.
type TokenRef struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Chain  string `json:"chain"`
}

// Metrics carries whatever market data could be gathered; every field
// is optional.
type Metrics struct {
	PriceUsd     *float64 `json:"price_usd,omitempty"`
	LiquidityUsd *float64 `json:"liquidity_usd,omitempty"`
	Volume24h    *float64 `json:"volume_24h,omitempty"`
	Fdv          *float64 `json:"fdv,omitempty"`
	Buys24h      *int     `json:"buys_24h,omitempty"`
	Sells24h     *int     `json:"sells_24h,omitempty"`
}

// Request is the input contract of the insight generator.
type Request struct {
	Token   TokenRef `json:"token"`
	Metrics Metrics  `json:"metrics"`
}

// Insight is a narrative safety assessment of a token.
type Insight struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	Provider    string `json:"provider"`
}

// IProvider is one language-model backend producing insights.
type IProvider interface {
	Generate(ctx context.Context, req Request) (Insight, error)
}

// IInsightUsecase generates an insight and never fails: any provider
// error resolves to the deterministic heuristic fallback.
type IInsightUsecase interface {
	Generate(ctx context.Context, req Request, provider string) Insight
}

// NeutralScore is used when a model's output cannot be coerced into a
// number.
const NeutralScore = 50

// CoerceScore sanitizes the score shapes models actually return:
// numbers, numeric strings, and percentage strings like "85%". The
// result is clamped to 0..100. ok is false when nothing numeric could
// be extracted.
func CoerceScore(v any) (score int, ok bool) {
	switch n := v.(type) {
	case int:
		return ClampScore(n), true
	case int64:
		return ClampScore(int(n)), true
	case float64:
		return ClampScore(int(n + 0.5)), true
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%"))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ClampScore(int(f + 0.5)), true
		}
	}
	return 0, false
}

// ClampScore bounds a score to the 0..100 contract.
func ClampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

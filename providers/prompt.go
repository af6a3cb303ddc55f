package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
)

const safetySystemPrompt = `You are a cryptocurrency token risk analyst.
Given a token and whatever market metrics are available, assess how safe
the token looks for a casual retail buyer.

SCORING RULES:
- 0 means almost certainly a scam or dead token, 100 means blue-chip safe.
- Weigh liquidity depth and trading volume heavily; thin liquidity is the
  single biggest red flag.
- A heavily sell-skewed transaction ratio suggests distribution or exit.
- Missing metrics are a mild negative, never a disqualifier.

Return ONLY a JSON object: {"score": <integer 0-100>, "explanation": "<2-3 sentences>"}.`

// buildUserPrompt serializes the request into the prompt body. Absent
// metrics are listed explicitly so the model does not hallucinate them.
func buildUserPrompt(req insight.Request) string {
	var b strings.Builder
	name := req.Token.Name
	if name == "" {
		name = req.Token.Symbol
	}
	fmt.Fprintf(&b, "Token: %s (%s)", name, req.Token.Symbol)
	if req.Token.Chain != "" {
		fmt.Fprintf(&b, " on %s", req.Token.Chain)
	}
	b.WriteString("\nMetrics:\n")

	writeMetric(&b, "price_usd", floatStr(req.Metrics.PriceUsd))
	writeMetric(&b, "liquidity_usd", floatStr(req.Metrics.LiquidityUsd))
	writeMetric(&b, "volume_24h_usd", floatStr(req.Metrics.Volume24h))
	writeMetric(&b, "fdv_usd", floatStr(req.Metrics.Fdv))
	writeMetric(&b, "buys_24h", intStr(req.Metrics.Buys24h))
	writeMetric(&b, "sells_24h", intStr(req.Metrics.Sells24h))
	return b.String()
}

func writeMetric(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "- %s: %s\n", name, value)
}

func floatStr(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%g", *v)
}

func intStr(v *int) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *v)
}

// parseInsightJSON extracts {score, explanation} from a model reply,
// tolerating markdown code fences and score shapes like "85%".
func parseInsightJSON(raw string) (insight.Insight, error) {
	cleaned := stripCodeFence(raw)

	var payload struct {
		Score       any    `json:"score"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return insight.Insight{}, fmt.Errorf("unparseable model reply: %w", err)
	}

	score, ok := insight.CoerceScore(payload.Score)
	if !ok {
		score = insight.NeutralScore
	}
	if strings.TrimSpace(payload.Explanation) == "" {
		return insight.Insight{}, fmt.Errorf("model reply missing explanation")
	}
	return insight.Insight{Score: score, Explanation: payload.Explanation}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

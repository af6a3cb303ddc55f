package telegram

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

func formatSnapshot(s token.MarketSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s)\n", s.Name, strings.ToUpper(s.Symbol))
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(s.Price))
	if s.MarketCap > 0 {
		fmt.Fprintf(&b, "Market cap: $%s\n", humanize.CommafWithDigits(s.MarketCap, 0))
	}
	if s.Volume24h > 0 {
		fmt.Fprintf(&b, "24h volume: $%s\n", humanize.CommafWithDigits(s.Volume24h, 0))
	}
	if s.LiquidityScore != nil {
		fmt.Fprintf(&b, "Liquidity score: %.1f\n", *s.LiquidityScore)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSafetyReport(r token.SafetyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Safety report for %s*\n", strings.ToUpper(r.Query))
	if r.Resolve != nil {
		fmt.Fprintf(&b, "Contract: `%s`\n", r.Resolve.Address)
		if r.Resolve.Note != "" {
			fmt.Fprintf(&b, "_%s_\n", r.Resolve.Note)
		}
	}
	if r.Pair != nil && r.Pair.Liquidity.USD > 0 {
		fmt.Fprintf(&b, "Liquidity: $%s\n", humanize.CommafWithDigits(r.Pair.Liquidity.USD, 0))
	}
	fmt.Fprintf(&b, "\n%s Score: *%d/100*\n%s", scoreBadge(r.Insight.Score), r.Insight.Score, r.Insight.Explanation)
	fmt.Fprintf(&b, "\n\n_source: %s_", r.Insight.Provider)
	return b.String()
}

// formatPrice keeps small-cap prices readable: micro-cap tokens need
// the significant digits, majors do not.
func formatPrice(p float64) string {
	switch {
	case p == 0:
		return "n/a"
	case p < 0.01:
		return fmt.Sprintf("$%.8f", p)
	case p < 1:
		return fmt.Sprintf("$%.4f", p)
	default:
		return "$" + humanize.CommafWithDigits(p, 2)
	}
}

func scoreBadge(score int) string {
	switch {
	case score >= 70:
		return "🟢"
	case score >= 40:
		return "🟡"
	default:
		return "🔴"
	}
}

func formatRateLimited(seconds int) string {
	return fmt.Sprintf("Rate limit reached, retry in %ds.", seconds)
}

// formatError translates the pipeline's typed failures into chat
// wording; anything unexpected gets a generic apology.
func formatError(query string, err error) string {
	switch err.(type) {
	case pkgError.NotFoundError:
		return fmt.Sprintf("I could not find any data for *%s*.", query)
	case pkgError.InvalidInputError:
		return "That does not look like a valid symbol or address."
	case pkgError.UpstreamError:
		return "The market data service is having trouble right now, try again shortly."
	default:
		return "Something went wrong, try again shortly."
	}
}

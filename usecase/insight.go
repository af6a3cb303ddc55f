package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
)

type insightService struct {
	providers map[string]insight.IProvider
	// order decides which model backend is tried first when the caller
	// asks for "auto".
	order []string
}

// NewInsightService wires the registered model backends. providers may
// be empty; the heuristic then answers everything.
func NewInsightService(providers map[string]insight.IProvider, order []string) insight.IInsightUsecase {
	if order == nil {
		order = []string{insight.ProviderOpenAI, insight.ProviderGemini}
	}
	return &insightService{providers: providers, order: order}
}

// Generate produces a safety insight. It never fails: when the
// requested backend (or every backend for "auto") errors, panics or
// returns garbage, the deterministic heuristic answers instead.
func (s *insightService) Generate(ctx context.Context, req insight.Request, provider string) insight.Insight {
	provider = strings.ToLower(strings.TrimSpace(provider))

	switch provider {
	case "", insight.ProviderAuto:
		for _, name := range s.order {
			if out, ok := s.tryProvider(ctx, name, req); ok {
				return out
			}
		}
	case insight.ProviderHeuristic:
		// Explicit request, skip the models entirely.
	default:
		if out, ok := s.tryProvider(ctx, provider, req); ok {
			return out
		}
	}

	return HeuristicInsight(req)
}

// tryProvider runs one backend with panic containment. A misbehaving
// SDK must never take a chat handler down with it.
func (s *insightService) tryProvider(ctx context.Context, name string, req insight.Request) (out insight.Insight, ok bool) {
	p, registered := s.providers[name]
	if !registered {
		return insight.Insight{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[INSIGHT] Provider %s panicked: %v", name, r)
			out, ok = insight.Insight{}, false
		}
	}()

	res, err := p.Generate(ctx, req)
	if err != nil {
		logrus.WithError(err).Warnf("[INSIGHT] Provider %s failed, falling back", name)
		return insight.Insight{}, false
	}
	res.Provider = name
	return res, true
}

// HeuristicInsight scores a token from on-chain style metrics alone.
// Deterministic and offline, it is the floor under every model backend.
func HeuristicInsight(req insight.Request) insight.Insight {
	score := insight.NeutralScore
	var notes []string

	m := req.Metrics
	switch {
	case m.LiquidityUsd == nil:
		notes = append(notes, "liquidity unknown")
	case *m.LiquidityUsd > 1_000_000:
		score += 20
		notes = append(notes, "deep liquidity")
	case *m.LiquidityUsd > 100_000:
		score += 10
		notes = append(notes, "moderate liquidity")
	case *m.LiquidityUsd < 10_000:
		score -= 20
		notes = append(notes, "very thin liquidity")
	}

	if m.Volume24h != nil && *m.Volume24h > 1_000_000 {
		score += 10
		notes = append(notes, "healthy 24h volume")
	}

	if m.Buys24h != nil && m.Sells24h != nil && *m.Sells24h > 0 {
		ratio := float64(*m.Buys24h) / float64(*m.Sells24h)
		if ratio > 1.5 {
			score += 10
			notes = append(notes, "buy pressure dominates")
		} else if ratio < 0.5 {
			score -= 10
			notes = append(notes, "sell pressure dominates")
		}
	}

	score = insight.ClampScore(score)

	name := req.Token.Name
	if name == "" {
		name = req.Token.Symbol
	}
	if name == "" {
		name = "this token"
	}

	explanation := fmt.Sprintf("Heuristic assessment of %s: %s.", name, joinNotes(notes))
	return insight.Insight{Score: score, Explanation: explanation, Provider: insight.ProviderHeuristic}
}

func joinNotes(notes []string) string {
	if len(notes) == 0 {
		return "no market metrics available, neutral stance"
	}
	return strings.Join(notes, ", ")
}

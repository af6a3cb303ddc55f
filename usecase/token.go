package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

type tokenService struct {
	market   token.IMarketClient
	dex      token.IDexClient
	resolver token.IResolver
	insight  insight.IInsightUsecase
}

// NewTokenService is the orchestration layer both surfaces talk to.
func NewTokenService(market token.IMarketClient, dex token.IDexClient, resolver token.IResolver, insightSvc insight.IInsightUsecase) token.ITokenUsecase {
	return &tokenService{market: market, dex: dex, resolver: resolver, insight: insightSvc}
}

// Snapshot answers a price query. Symbols go through the market
// aggregator; raw addresses are priced off their deepest DEX pair,
// since the aggregator cannot look up arbitrary contracts by address.
func (s *tokenService) Snapshot(ctx context.Context, query string) (token.MarketSnapshot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return token.MarketSnapshot{}, pkgError.InvalidInputError("query must not be empty")
	}

	if token.IsEVMAddress(query) {
		pairs, err := s.dex.GetPairsByContract(ctx, query)
		if err != nil {
			return token.MarketSnapshot{}, err
		}
		return snapshotFromPair(pairs[0]), nil
	}

	return s.market.ResolveSymbol(ctx, query)
}

func (s *tokenService) Resolve(ctx context.Context, query string) (*token.ResolveResult, error) {
	return s.resolver.Resolve(ctx, query)
}

// Safety builds the full report: resolve the query, gather whatever
// market data can be had (DEX pair by contract, aggregator snapshot by
// symbol, both best-effort), then ask the insight generator. At least
// one data source must answer; the insight itself never fails.
func (s *tokenService) Safety(ctx context.Context, query, provider string) (token.SafetyReport, error) {
	query = strings.TrimSpace(query)

	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return token.SafetyReport{}, err
	}

	var pair *token.TradingPair
	if pairs, err := s.dex.GetPairsByContract(ctx, res.Address); err != nil {
		logrus.WithError(err).Debug("[TOKEN] No DEX pairs for resolved contract")
	} else if len(pairs) > 0 {
		pair = &pairs[0]
	}

	var snapshot *token.MarketSnapshot
	if !token.IsEVMAddress(query) {
		if snap, err := s.market.ResolveSymbol(ctx, query); err != nil {
			logrus.WithError(err).Debug("[TOKEN] No aggregator snapshot for query")
		} else {
			snapshot = &snap
		}
	}

	if pair == nil && snapshot == nil {
		return token.SafetyReport{}, pkgError.NotFoundError("no market data available for " + query)
	}

	report := token.SafetyReport{
		Query:    query,
		Resolve:  res,
		Snapshot: snapshot,
		Pair:     pair,
	}
	report.Insight = s.insight.Generate(ctx, buildInsightRequest(query, snapshot, pair), provider)
	return report, nil
}

// buildInsightRequest merges the two best-effort data sources into the
// generator's input shape. Pair data wins for on-chain metrics, the
// aggregator snapshot for identity and volume fallbacks.
func buildInsightRequest(query string, snapshot *token.MarketSnapshot, pair *token.TradingPair) insight.Request {
	req := insight.Request{}
	req.Token.Symbol = strings.ToUpper(query)

	if snapshot != nil {
		req.Token.Name = snapshot.Name
		req.Token.Symbol = strings.ToUpper(snapshot.Symbol)
		price := snapshot.Price
		req.Metrics.PriceUsd = &price
		if snapshot.Volume24h > 0 {
			vol := snapshot.Volume24h
			req.Metrics.Volume24h = &vol
		}
	}

	if pair != nil {
		if pair.BaseToken.Name != "" {
			req.Token.Name = pair.BaseToken.Name
		}
		if pair.BaseToken.Symbol != "" {
			req.Token.Symbol = strings.ToUpper(pair.BaseToken.Symbol)
		}
		req.Token.Chain = pair.ChainID

		if p, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil {
			req.Metrics.PriceUsd = &p
		}
		if pair.Liquidity.USD > 0 {
			liq := pair.Liquidity.USD
			req.Metrics.LiquidityUsd = &liq
		}
		if pair.Volume.H24 > 0 {
			vol := pair.Volume.H24
			req.Metrics.Volume24h = &vol
		}
		if pair.Fdv > 0 {
			fdv := pair.Fdv
			req.Metrics.Fdv = &fdv
		}
		if pair.Txns.H24.Buys > 0 || pair.Txns.H24.Sells > 0 {
			buys, sells := pair.Txns.H24.Buys, pair.Txns.H24.Sells
			req.Metrics.Buys24h = &buys
			req.Metrics.Sells24h = &sells
		}
	}

	return req
}

func snapshotFromPair(p token.TradingPair) token.MarketSnapshot {
	snap := token.MarketSnapshot{
		ID:        p.BaseToken.Address,
		Symbol:    p.BaseToken.Symbol,
		Name:      p.BaseToken.Name,
		MarketCap: p.Fdv,
		Volume24h: p.Volume.H24,
	}
	if price, err := strconv.ParseFloat(p.PriceUsd, 64); err == nil {
		snap.Price = price
	}
	return snap
}

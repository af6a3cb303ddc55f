package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

type captureInsight struct {
	lastReq      insight.Request
	lastProvider string
}

func (c *captureInsight) Generate(ctx context.Context, req insight.Request, provider string) insight.Insight {
	c.lastReq = req
	c.lastProvider = provider
	return insight.Insight{Score: 77, Explanation: "stub", Provider: insight.ProviderHeuristic}
}

func TestSnapshotBySymbolUsesAggregator(t *testing.T) {
	market := &stubMarketClient{
		resolveFn: func(ctx context.Context, symbol string) (token.MarketSnapshot, error) {
			return token.MarketSnapshot{ID: "pepe", Symbol: "pepe", Price: 0.0000012}, nil
		},
	}
	dex := &stubDexClient{}
	svc := NewTokenService(market, dex, NewResolverService(market, dex), &captureInsight{})

	snap, err := svc.Snapshot(context.Background(), "pepe")
	require.NoError(t, err)
	assert.Equal(t, "pepe", snap.ID)
	assert.Zero(t, dex.contractCalls)
}

func TestSnapshotByAddressUsesDexPair(t *testing.T) {
	addr := "0x6982508145454ce325ddbe47a25d4ec3d2311933"
	dex := &stubDexClient{
		contractFn: func(ctx context.Context, address string) ([]token.TradingPair, error) {
			require.Equal(t, addr, address)
			p := pairWith(addr, "WETH", 5_000_000)
			p.BaseToken.Name = "Pepe"
			p.BaseToken.Symbol = "PEPE"
			p.PriceUsd = "0.0000011"
			p.Fdv = 460_000_000
			p.Volume.H24 = 12_000_000
			return []token.TradingPair{p}, nil
		},
	}
	market := &stubMarketClient{}
	svc := NewTokenService(market, dex, NewResolverService(market, dex), &captureInsight{})

	snap, err := svc.Snapshot(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Pepe", snap.Name)
	assert.InDelta(t, 0.0000011, snap.Price, 1e-12)
	assert.InDelta(t, 460_000_000, snap.MarketCap, 0.1)
	assert.Zero(t, market.resolveCalls)
}

func TestSafetyMergesPairAndSnapshot(t *testing.T) {
	addr := "0x1111111111111111111111111111111111111111"
	market := &stubMarketClient{
		resolveFn: func(ctx context.Context, symbol string) (token.MarketSnapshot, error) {
			return token.MarketSnapshot{ID: "tkn", Symbol: "tkn", Name: "Token", Price: 1.5, Volume24h: 80_000}, nil
		},
	}
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			return []token.TradingPair{pairWith(addr, "USDC", 300_000)}, nil
		},
		contractFn: func(ctx context.Context, address string) ([]token.TradingPair, error) {
			p := pairWith(addr, "USDC", 300_000)
			p.PriceUsd = "1.48"
			p.Txns.H24.Buys = 120
			p.Txns.H24.Sells = 60
			return []token.TradingPair{p}, nil
		},
	}
	ins := &captureInsight{}
	svc := NewTokenService(market, dex, NewResolverService(market, dex), ins)

	report, err := svc.Safety(context.Background(), "tkn", insight.ProviderGemini)
	require.NoError(t, err)
	assert.Equal(t, token.SourceDexPair, report.Resolve.Source)
	require.NotNil(t, report.Pair)
	require.NotNil(t, report.Snapshot)
	assert.Equal(t, 77, report.Insight.Score)

	assert.Equal(t, insight.ProviderGemini, ins.lastProvider)
	require.NotNil(t, ins.lastReq.Metrics.PriceUsd)
	assert.InDelta(t, 1.48, *ins.lastReq.Metrics.PriceUsd, 1e-9)
	require.NotNil(t, ins.lastReq.Metrics.LiquidityUsd)
	assert.InDelta(t, 300_000, *ins.lastReq.Metrics.LiquidityUsd, 0.1)
	require.NotNil(t, ins.lastReq.Metrics.Buys24h)
	assert.Equal(t, 120, *ins.lastReq.Metrics.Buys24h)
}

func TestSafetyNotFoundWhenNoDataAtAll(t *testing.T) {
	addr := "0x2222222222222222222222222222222222222222"
	market := &stubMarketClient{}
	dex := &stubDexClient{
		contractFn: func(ctx context.Context, address string) ([]token.TradingPair, error) {
			return nil, pkgError.NotFoundError("no pairs")
		},
	}
	svc := NewTokenService(market, dex, NewResolverService(market, dex), &captureInsight{})

	// Direct address resolves without network, but no market data
	// exists anywhere downstream.
	_, err := svc.Safety(context.Background(), addr, "")
	require.Error(t, err)
	assert.IsType(t, pkgError.NotFoundError(""), err)
}

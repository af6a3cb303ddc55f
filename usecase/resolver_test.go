package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

type stubMarketClient struct {
	searchFn     func(ctx context.Context, query string) ([]token.SearchCandidate, error)
	coinDetailFn func(ctx context.Context, id string) (token.CoinDetail, error)
	resolveFn    func(ctx context.Context, symbol string) (token.MarketSnapshot, error)

	searchCalls  int
	detailCalls  int
	resolveCalls int
}

func (s *stubMarketClient) ResolveSymbol(ctx context.Context, symbol string) (token.MarketSnapshot, error) {
	s.resolveCalls++
	if s.resolveFn == nil {
		return token.MarketSnapshot{}, errors.New("unexpected ResolveSymbol call")
	}
	return s.resolveFn(ctx, symbol)
}

func (s *stubMarketClient) Search(ctx context.Context, query string) ([]token.SearchCandidate, error) {
	s.searchCalls++
	if s.searchFn == nil {
		return nil, errors.New("unexpected Search call")
	}
	return s.searchFn(ctx, query)
}

func (s *stubMarketClient) CoinDetail(ctx context.Context, id string) (token.CoinDetail, error) {
	s.detailCalls++
	if s.coinDetailFn == nil {
		return token.CoinDetail{}, errors.New("unexpected CoinDetail call")
	}
	return s.coinDetailFn(ctx, id)
}

type stubDexClient struct {
	searchFn   func(ctx context.Context, query string, limit int) ([]token.TradingPair, error)
	detailFn   func(ctx context.Context, chainID, pairAddress string) (*token.TradingPair, error)
	contractFn func(ctx context.Context, address string) ([]token.TradingPair, error)

	searchCalls   int
	detailCalls   int
	contractCalls int
}

func (s *stubDexClient) SearchPairs(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
	s.searchCalls++
	if s.searchFn == nil {
		return nil, errors.New("unexpected SearchPairs call")
	}
	return s.searchFn(ctx, query, limit)
}

func (s *stubDexClient) GetPairDetail(ctx context.Context, chainID, pairAddress string) (*token.TradingPair, error) {
	s.detailCalls++
	if s.detailFn == nil {
		return nil, errors.New("unexpected GetPairDetail call")
	}
	return s.detailFn(ctx, chainID, pairAddress)
}

func (s *stubDexClient) GetPairsByContract(ctx context.Context, address string) ([]token.TradingPair, error) {
	s.contractCalls++
	if s.contractFn == nil {
		return nil, errors.New("unexpected GetPairsByContract call")
	}
	return s.contractFn(ctx, address)
}

func pairWith(base, quoteSymbol string, liquidity float64) token.TradingPair {
	p := token.TradingPair{
		ChainID:     "ethereum",
		PairAddress: "0x00000000000000000000000000000000000000aa",
	}
	p.BaseToken = token.PairToken{Address: base, Symbol: "TKN"}
	p.QuoteToken = token.PairToken{Symbol: quoteSymbol}
	p.Liquidity.USD = liquidity
	return p
}

func TestResolverDirectAddressSkipsNetwork(t *testing.T) {
	market := &stubMarketClient{}
	dex := &stubDexClient{}
	r := NewResolverService(market, dex)

	addr := "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"
	res, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, token.SourceDirect, res.Source)
	assert.Zero(t, dex.searchCalls)
	assert.Zero(t, market.searchCalls)
}

func TestResolverEmptyQuery(t *testing.T) {
	r := NewResolverService(&stubMarketClient{}, &stubDexClient{})

	_, err := r.Resolve(context.Background(), "   ")
	require.Error(t, err)
	assert.IsType(t, pkgError.InvalidInputError(""), err)
}

func TestResolverStableQuoteOutranksLiquidity(t *testing.T) {
	stableBase := "0x1111111111111111111111111111111111111111"
	richBase := "0x2222222222222222222222222222222222222222"
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			assert.Equal(t, 8, limit)
			return []token.TradingPair{
				pairWith(richBase, "SHIB", 9_000_000),
				pairWith(stableBase, "usdc", 40_000),
			}, nil
		},
	}
	r := NewResolverService(&stubMarketClient{}, dex)

	res, err := r.Resolve(context.Background(), "tkn")
	require.NoError(t, err)
	assert.Equal(t, stableBase, res.Address)
	assert.Equal(t, token.SourceDexPair, res.Source)
}

func TestResolverFallsBackToPairDetail(t *testing.T) {
	base := "0x3333333333333333333333333333333333333333"
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			// Listings without usable base addresses.
			broken := pairWith("", "USDT", 1000)
			solana := pairWith("So11111111111111111111111111111111111112", "USDC", 2000)
			return []token.TradingPair{broken, solana}, nil
		},
		detailFn: func(ctx context.Context, chainID, pairAddress string) (*token.TradingPair, error) {
			p := pairWith(base, "USDT", 1000)
			return &p, nil
		},
	}
	r := NewResolverService(&stubMarketClient{}, dex)

	res, err := r.Resolve(context.Background(), "tkn")
	require.NoError(t, err)
	assert.Equal(t, base, res.Address)
	assert.Equal(t, token.SourcePairDetail, res.Source)
	assert.Equal(t, 1, dex.detailCalls)
}

func TestResolverAggregatorSearchStage(t *testing.T) {
	addr := "0x4444444444444444444444444444444444444444"
	rankLow, rankHigh := 3, 120
	market := &stubMarketClient{
		searchFn: func(ctx context.Context, query string) ([]token.SearchCandidate, error) {
			return []token.SearchCandidate{
				{ID: "obscure-coin", MarketCapRank: &rankHigh},
				{ID: "major-coin", MarketCapRank: &rankLow},
				{ID: "unranked-coin"},
			}, nil
		},
		coinDetailFn: func(ctx context.Context, id string) (token.CoinDetail, error) {
			require.Equal(t, "major-coin", id)
			return token.CoinDetail{
				ID: id,
				Platforms: map[string]string{
					"solana":   "So11111111111111111111111111111111111112",
					"ethereum": addr,
				},
			}, nil
		},
	}
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			return nil, nil
		},
	}
	r := NewResolverService(market, dex)

	res, err := r.Resolve(context.Background(), "major")
	require.NoError(t, err)
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, token.SourceAggregatorSearch, res.Source)
}

func TestResolverStaticMappingWhenEverythingFails(t *testing.T) {
	market := &stubMarketClient{
		searchFn: func(ctx context.Context, query string) ([]token.SearchCandidate, error) {
			return nil, errors.New("search down")
		},
	}
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			return nil, errors.New("dex down")
		},
	}
	r := NewResolverService(market, dex)

	res, err := r.Resolve(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", res.Address)
	assert.Equal(t, token.SourceStaticMapping, res.Source)
	assert.Equal(t, "Mapped to WBTC (Ethereum)", res.Note)
}

func TestResolverNotFound(t *testing.T) {
	market := &stubMarketClient{
		searchFn: func(ctx context.Context, query string) ([]token.SearchCandidate, error) {
			return nil, nil
		},
	}
	dex := &stubDexClient{
		searchFn: func(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
			return nil, nil
		},
	}
	r := NewResolverService(market, dex)

	_, err := r.Resolve(context.Background(), "definitely-not-a-token")
	require.Error(t, err)
	assert.IsType(t, pkgError.NotFoundError(""), err)
}

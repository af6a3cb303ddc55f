package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

// dexSearchLimit caps the candidate set taken from DEX search during
// resolution.
const dexSearchLimit = 8

// preferredQuotes are the stable/major quote assets that make a pair's
// base address trustworthy: real liquidity against a recognizable
// counter-asset beats raw pool size.
var preferredQuotes = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"BUSD": true,
	"WETH": true,
	"WBNB": true,
}

// platformPriority orders the aggregator's chain-platform map scan:
// Ethereum first, then the common EVM-compatible chains.
var platformPriority = []string{
	"ethereum",
	"binance-smart-chain",
	"polygon-pos",
	"arbitrum-one",
	"optimistic-ethereum",
	"base",
	"avalanche",
}

type staticMapping struct {
	address string
	note    string
}

// nativeCoinMappings maps native base-layer coins users reference by
// symbol to their canonical wrapped ERC-20 on Ethereum. Kept tiny on
// purpose; extend here if more native assets need a last-resort answer.
var nativeCoinMappings = map[string]staticMapping{
	"btc": {address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", note: "Mapped to WBTC (Ethereum)"},
	"eth": {address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", note: "Mapped to WETH (Ethereum)"},
}

type resolverService struct {
	market token.IMarketClient
	dex    token.IDexClient
}

// NewResolverService builds the contract resolver on top of the two
// aggregator clients.
func NewResolverService(market token.IMarketClient, dex token.IDexClient) token.IResolver {
	return &resolverService{market: market, dex: dex}
}

// Resolve turns an arbitrary user query (address, symbol or name) into
// a single best-guess contract address. The fallback chain encodes a
// trust hierarchy: an exact address is authoritative, DEX liquidity
// outranks search-engine symbol matching, and a static native-coin
// table is the last resort. Failures in the network stages are logged
// and skipped, never fatal: a query that nothing can resolve yields
// NotFound.
func (s *resolverService) Resolve(ctx context.Context, query string) (*token.ResolveResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgError.InvalidInputError("query must not be empty")
	}

	// Stage 1: the query already is an address. No network call.
	if token.IsEVMAddress(query) {
		return &token.ResolveResult{Address: query, Source: token.SourceDirect}, nil
	}

	pairs, err := s.dex.SearchPairs(ctx, query, dexSearchLimit)
	if err != nil {
		logrus.WithError(err).Warn("[RESOLVER] DEX search failed, falling through")
		pairs = nil
	}

	// Stage 2: best DEX pair with a usable base address.
	if res := pickBestPair(pairs); res != nil {
		return res, nil
	}

	// Stage 3: pair detail lookups for search hits whose listing lacked
	// a usable base address. Individual failures are swallowed.
	for _, p := range pairs {
		if p.ChainID == "" || p.PairAddress == "" {
			continue
		}
		detail, err := s.dex.GetPairDetail(ctx, p.ChainID, p.PairAddress)
		if err != nil {
			logrus.WithError(err).Debug("[RESOLVER] Pair detail lookup failed, skipping candidate")
			continue
		}
		if detail != nil && token.IsEVMAddress(detail.BaseToken.Address) {
			return &token.ResolveResult{Address: detail.BaseToken.Address, Source: token.SourcePairDetail}, nil
		}
	}

	// Stage 4: aggregator symbol search, best-effort.
	if res := s.resolveViaAggregator(ctx, query); res != nil {
		return res, nil
	}

	// Stage 5: static native-coin mapping.
	if m, ok := nativeCoinMappings[strings.ToLower(query)]; ok {
		return &token.ResolveResult{Address: m.address, Source: token.SourceStaticMapping, Note: m.note}, nil
	}

	return nil, pkgError.NotFoundError("could not resolve a contract address for " + query)
}

// pickBestPair ranks pairs that expose a valid base address: a
// recognized stable/major quote symbol first, then liquidity.
func pickBestPair(pairs []token.TradingPair) *token.ResolveResult {
	usable := make([]token.TradingPair, 0, len(pairs))
	for _, p := range pairs {
		if token.IsEVMAddress(p.BaseToken.Address) {
			usable = append(usable, p)
		}
	}
	if len(usable) == 0 {
		return nil
	}

	sort.SliceStable(usable, func(i, j int) bool {
		pi, pj := quoteScore(usable[i]), quoteScore(usable[j])
		if pi != pj {
			return pi > pj
		}
		return usable[i].Liquidity.USD > usable[j].Liquidity.USD
	})

	return &token.ResolveResult{Address: usable[0].BaseToken.Address, Source: token.SourceDexPair}
}

func quoteScore(p token.TradingPair) int {
	if preferredQuotes[strings.ToUpper(p.QuoteToken.Symbol)] {
		return 1
	}
	return 0
}

// resolveViaAggregator asks the market aggregator's symbol search and
// scans the winner's chain platforms in priority order. Any failure in
// this stage falls through to the static mapping.
func (s *resolverService) resolveViaAggregator(ctx context.Context, query string) *token.ResolveResult {
	candidates, err := s.market.Search(ctx, query)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			logrus.WithError(err).Debug("[RESOLVER] Aggregator search failed, skipping stage")
		}
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankLess(candidates[i].MarketCapRank, candidates[j].MarketCapRank)
	})

	detail, err := s.market.CoinDetail(ctx, candidates[0].ID)
	if err != nil {
		logrus.WithError(err).Debug("[RESOLVER] Coin detail failed, skipping stage")
		return nil
	}

	for _, platform := range platformPriority {
		if addr, ok := detail.Platforms[platform]; ok && token.IsEVMAddress(addr) {
			return &token.ResolveResult{Address: addr, Source: token.SourceAggregatorSearch}
		}
	}
	return nil
}

func rankLess(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

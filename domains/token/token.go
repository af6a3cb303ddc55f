package token

import (
	"context"
	"regexp"
	"time"

	domainInsight "github.com/P-Jays/crypto-telegram-bot/domains/insight"
)

// MarketSnapshot is the canonical result of resolving a symbol against
// the market aggregator.
type MarketSnapshot struct {
	ID             string   `json:"id"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	MarketCap      float64  `json:"market_cap"`
	Volume24h      float64  `json:"volume_24h"`
	LiquidityScore *float64 `json:"liquidity_score,omitempty"`
}

// SearchCandidate is one hit from the aggregator's text search.
type SearchCandidate struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
}

// CoinDetail is the aggregator's full coin profile, used to backfill
// optional snapshot fields and to map symbols to chain contracts.
type CoinDetail struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	LiquidityScore *float64          `json:"liquidity_score,omitempty"`
	Platforms      map[string]string `json:"platforms,omitempty"`
}

// PairToken identifies one side of a trading pair.
type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// TradingPair mirrors a DEX aggregator pair record. Address presence
// and validity vary by chain; only EVM chains expose the canonical
// 0x-prefixed contract.
type TradingPair struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   PairToken `json:"baseToken"`
	QuoteToken  PairToken `json:"quoteToken"`
	PriceUsd    string    `json:"priceUsd,omitempty"`
	Fdv         float64   `json:"fdv,omitempty"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Txns struct {
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
}

// ResolveSource tags which stage of the resolver produced an address.
type ResolveSource string

const (
	SourceDirect           ResolveSource = "direct"
	SourceDexPair          ResolveSource = "dex-pair"
	SourcePairDetail       ResolveSource = "pair-detail"
	SourceAggregatorSearch ResolveSource = "aggregator-search"
	SourceStaticMapping    ResolveSource = "static-mapping"
)

// ResolveResult is the outcome of contract resolution.
type ResolveResult struct {
	Address string        `json:"address"`
	Source  ResolveSource `json:"source"`
	Note    string        `json:"note,omitempty"`
}

// SafetyReport bundles everything the surfaces render for a safety
// query. Snapshot and Pair are best-effort and may be nil.
type SafetyReport struct {
	Query    string                `json:"query"`
	Resolve  *ResolveResult        `json:"resolve,omitempty"`
	Snapshot *MarketSnapshot       `json:"snapshot,omitempty"`
	Pair     *TradingPair          `json:"pair,omitempty"`
	Insight  domainInsight.Insight `json:"insight"`
}

// IMarketClient talks to the market aggregator (search, markets,
// coin-detail endpoints) with its cache layers behind it.
type IMarketClient interface {
	ResolveSymbol(ctx context.Context, symbol string) (MarketSnapshot, error)
	Search(ctx context.Context, query string) ([]SearchCandidate, error)
	CoinDetail(ctx context.Context, id string) (CoinDetail, error)
}

// IDexClient talks to the DEX aggregator.
type IDexClient interface {
	SearchPairs(ctx context.Context, query string, limit int) ([]TradingPair, error)
	GetPairDetail(ctx context.Context, chainID, pairAddress string) (*TradingPair, error)
	GetPairsByContract(ctx context.Context, address string) ([]TradingPair, error)
}

// IResolver turns an arbitrary user query into a contract address.
type IResolver interface {
	Resolve(ctx context.Context, query string) (*ResolveResult, error)
}

// IMarketCacheRepository fronts the durable market cache. A row is
// valid only while its TTL timestamp is in the future; checking that is
// the repository's job, the store itself never auto-expires.
type IMarketCacheRepository interface {
	Get(ctx context.Context, key string) (*MarketSnapshot, bool, error)
	Put(ctx context.Context, key string, snap MarketSnapshot, ttl time.Duration) error
}

// ITokenUsecase orchestrates resolver, market and DEX clients plus the
// insight generator for both surfaces.
type ITokenUsecase interface {
	Snapshot(ctx context.Context, query string) (MarketSnapshot, error)
	Resolve(ctx context.Context, query string) (*ResolveResult, error)
	Safety(ctx context.Context, query, provider string) (SafetyReport, error)
}

var evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsEVMAddress reports whether s is a syntactically valid 20-byte
// 0x-prefixed contract address.
func IsEVMAddress(s string) bool {
	return evmAddressRe.MatchString(s)
}

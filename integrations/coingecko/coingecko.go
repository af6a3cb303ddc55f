package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	"github.com/P-Jays/crypto-telegram-bot/pkg/cache"
	pkgError "github.com/P-Jays/crypto-telegram-bot/pkg/error"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// snapshotTTL applies to both the in-process and the durable cache.
	snapshotTTL = 45 * time.Second

	// maxMarketCandidates caps the batch sent to the markets endpoint.
	maxMarketCandidates = 5

	defaultRetryBackoff = 1500 * time.Millisecond
)

// httpStatusError keeps the upstream status so the retry policy can
// tell transient failures (429/5xx) from everything else.
type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("coingecko: %s returned status %d", e.url, e.status)
}

func (e *httpStatusError) transient() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// Client resolves token symbols to market snapshots via the CoinGecko
// API, fronted by a two-tier cache (in-process TTL map + durable
// write-through repository).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	backoff time.Duration

	memory  *cache.Cache[token.MarketSnapshot]
	durable token.IMarketCacheRepository
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIKey sets the demo/pro API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithDurableCache attaches the write-through durable cache.
func WithDurableCache(repo token.IMarketCacheRepository) Option {
	return func(c *Client) { c.durable = repo }
}

// WithRetryBackoff overrides the fixed wait before the single retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		backoff: defaultRetryBackoff,
		memory:  cache.New[token.MarketSnapshot](snapshotTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveSymbol returns the market snapshot for a symbol. Lookup order:
// in-process cache, durable cache (back-filling the in-process one on
// hit), then live fetch with a single retry on transient failure. A
// successful live fetch writes through to both caches.
func (c *Client) ResolveSymbol(ctx context.Context, symbol string) (token.MarketSnapshot, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return token.MarketSnapshot{}, pkgError.InvalidInputError("symbol must not be empty")
	}
	key := strings.ToLower(symbol)

	if snap, ok := c.memory.Get(key); ok {
		return snap, nil
	}

	if c.durable != nil {
		snap, ok, err := c.durable.Get(ctx, key)
		if err != nil {
			logrus.WithError(err).Warn("[COINGECKO] Durable cache read failed")
		} else if ok {
			c.memory.Set(key, *snap, snapshotTTL)
			return *snap, nil
		}
	}

	snap, err := c.fetchLive(ctx, symbol)
	if err != nil {
		if se, ok := err.(*httpStatusError); ok && se.transient() {
			logrus.WithError(err).Warn("[COINGECKO] Transient failure, retrying once")
			select {
			case <-ctx.Done():
				return token.MarketSnapshot{}, ctx.Err()
			case <-time.After(c.backoff):
			}
			snap, err = c.fetchLive(ctx, symbol)
		}
	}
	if err != nil {
		if _, ok := err.(pkgError.NotFoundError); ok {
			return token.MarketSnapshot{}, err
		}
		return token.MarketSnapshot{}, pkgError.UpstreamError(err.Error())
	}

	if c.durable != nil {
		if err := c.durable.Put(ctx, key, snap, snapshotTTL); err != nil {
			logrus.WithError(err).Warn("[COINGECKO] Durable cache write failed")
		}
	}
	c.memory.Set(key, snap, snapshotTTL)

	return snap, nil
}

type marketRow struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  float64  `json:"current_price"`
	MarketCap     float64  `json:"market_cap"`
	TotalVolume   float64  `json:"total_volume"`
	MarketCapRank *int     `json:"market_cap_rank"`
	Liquidity     *float64 `json:"liquidity_score"`
}

func (c *Client) fetchLive(ctx context.Context, symbol string) (token.MarketSnapshot, error) {
	candidates, err := c.Search(ctx, symbol)
	if err != nil {
		return token.MarketSnapshot{}, err
	}
	if len(candidates) == 0 {
		return token.MarketSnapshot{}, pkgError.NotFoundError("no coin matches symbol " + symbol)
	}

	// Prefer exact case-insensitive symbol matches, keep the full set
	// only when nothing matches exactly.
	exact := make([]token.SearchCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if strings.EqualFold(cand.Symbol, symbol) {
			exact = append(exact, cand)
		}
	}
	if len(exact) > 0 {
		candidates = exact
	}
	if len(candidates) > maxMarketCandidates {
		candidates = candidates[:maxMarketCandidates]
	}

	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.ID)
	}

	rows, err := c.markets(ctx, ids)
	if err != nil {
		return token.MarketSnapshot{}, err
	}
	if len(rows) == 0 {
		return token.MarketSnapshot{}, pkgError.NotFoundError("no market data for symbol " + symbol)
	}

	// Smallest market-cap rank wins; missing rank sorts last.
	sort.SliceStable(rows, func(i, j int) bool {
		return rankLess(rows[i].MarketCapRank, rows[j].MarketCapRank)
	})
	winner := rows[0]

	snap := token.MarketSnapshot{
		ID:             winner.ID,
		Symbol:         winner.Symbol,
		Name:           winner.Name,
		Price:          winner.CurrentPrice,
		MarketCap:      winner.MarketCap,
		Volume24h:      winner.TotalVolume,
		LiquidityScore: winner.Liquidity,
	}

	// Backfill optional fields from the full profile; the markets
	// endpoint usually omits the liquidity score and occasionally the
	// name. Best effort only.
	if snap.Name != "" && snap.LiquidityScore != nil {
		return snap, nil
	}
	detail, err := c.CoinDetail(ctx, winner.ID)
	if err != nil {
		logrus.WithError(err).Debug("[COINGECKO] Coin detail backfill skipped")
		return snap, nil
	}
	if snap.Name == "" {
		snap.Name = detail.Name
	}
	if snap.LiquidityScore == nil && detail.LiquidityScore != nil {
		snap.LiquidityScore = detail.LiquidityScore
	}
	return snap, nil
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

// Search queries the aggregator's text search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]token.SearchCandidate, error) {
	var out struct {
		Coins []token.SearchCandidate `json:"coins"`
	}
	u := c.baseURL + "/search?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out.Coins, nil
}

func (c *Client) markets(ctx context.Context, ids []string) ([]marketRow, error) {
	var rows []marketRow
	u := c.baseURL + "/coins/markets?vs_currency=usd&ids=" + url.QueryEscape(strings.Join(ids, ","))
	if err := c.getJSON(ctx, u, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CoinDetail fetches the full coin profile including the chain
// platform address map.
func (c *Client) CoinDetail(ctx context.Context, id string) (token.CoinDetail, error) {
	var out struct {
		ID             string            `json:"id"`
		Name           string            `json:"name"`
		LiquidityScore *float64          `json:"liquidity_score"`
		Platforms      map[string]string `json:"platforms"`
	}
	u := c.baseURL + "/coins/" + url.PathEscape(id) +
		"?localization=false&tickers=false&market_data=false&community_data=false&developer_data=false"
	if err := c.getJSON(ctx, u, &out); err != nil {
		return token.CoinDetail{}, err
	}
	return token.CoinDetail{
		ID:             out.ID,
		Name:           out.Name,
		LiquidityScore: out.LiquidityScore,
		Platforms:      out.Platforms,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{status: resp.StatusCode, url: rawURL}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coingecko: failed to decode response: %w", err)
	}
	return nil
}

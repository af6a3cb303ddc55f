package dexscreener

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
	DefaultBaseURL = "https://api.dexscreener.com/latest/dex"

	searchTTL = 60 * time.Second
	pairTTL   = 45 * time.Second

	defaultRetryBackoff = 1200 * time.Millisecond
)

// Client queries the DEX aggregator. All three operations are backed by
// in-process TTL caches only; DEX data is too volatile to persist.
type Client struct {
	baseURL string
	http    *http.Client
	backoff time.Duration

	searchCache   *cache.Cache[[]token.TradingPair]
	detailCache   *cache.Cache[*token.TradingPair]
	contractCache *cache.Cache[[]token.TradingPair]
}

type Option func(*Client)

// WithBaseURL points the client at a different API root (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRetryBackoff overrides the fixed wait before the single retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		http:          &http.Client{Timeout: 10 * time.Second},
		backoff:       defaultRetryBackoff,
		searchCache:   cache.New[[]token.TradingPair](searchTTL),
		detailCache:   cache.New[*token.TradingPair](pairTTL),
		contractCache: cache.New[[]token.TradingPair](pairTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pairsResponse struct {
	Pairs []token.TradingPair `json:"pairs"`
}

// SearchPairs returns pairs matching a free-text query, ranked by
// descending liquidity in USD with 24h volume as tie-break, truncated
// to limit.
func (c *Client) SearchPairs(ctx context.Context, query string, limit int) ([]token.TradingPair, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgError.InvalidInputError("search query must not be empty")
	}

	key := strings.ToLower(query)
	pairs, err := c.searchCache.GetOrCompute(key, searchTTL, func() ([]token.TradingPair, error) {
		var out pairsResponse
		u := c.baseURL + "/search?q=" + url.QueryEscape(query)
		if err := c.getJSON(ctx, u, &out); err != nil {
			return nil, err
		}
		ranked := out.Pairs
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Liquidity.USD != ranked[j].Liquidity.USD {
				return ranked[i].Liquidity.USD > ranked[j].Liquidity.USD
			}
			return ranked[i].Volume.H24 > ranked[j].Volume.H24
		})
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}

// GetPairDetail fetches a single pair by chain and pair address.
// Returns nil when the upstream knows no such pair.
func (c *Client) GetPairDetail(ctx context.Context, chainID, pairAddress string) (*token.TradingPair, error) {
	chainID = strings.TrimSpace(chainID)
	pairAddress = strings.TrimSpace(pairAddress)
	if chainID == "" || pairAddress == "" {
		return nil, pkgError.InvalidInputError("chain and pair address are required")
	}

	key := strings.ToLower(chainID + "/" + pairAddress)
	return c.detailCache.GetOrCompute(key, pairTTL, func() (*token.TradingPair, error) {
		var out pairsResponse
		u := c.baseURL + "/pairs/" + url.PathEscape(chainID) + "/" + url.PathEscape(pairAddress)
		if err := c.getJSON(ctx, u, &out); err != nil {
			return nil, err
		}
		if len(out.Pairs) == 0 {
			return nil, nil
		}
		return &out.Pairs[0], nil
	})
}

// GetPairsByContract lists pairs trading a token contract, ranked by
// descending liquidity. Zero pairs is a NotFound: the address is
// syntactically fine but the aggregator has no liquidity data for it.
func (c *Client) GetPairsByContract(ctx context.Context, address string) ([]token.TradingPair, error) {
	address = strings.TrimSpace(address)
	if !token.IsEVMAddress(address) {
		return nil, pkgError.InvalidInputError("not a valid contract address: " + address)
	}

	key := strings.ToLower(address)
	pairs, err := c.contractCache.GetOrCompute(key, pairTTL, func() ([]token.TradingPair, error) {
		var out pairsResponse
		u := c.baseURL + "/tokens/" + url.PathEscape(address)
		if err := c.getJSON(ctx, u, &out); err != nil {
			return nil, err
		}
		ranked := out.Pairs
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Liquidity.USD > ranked[j].Liquidity.USD
		})
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, pkgError.NotFoundError("no trading pairs for contract " + address)
	}
	return pairs, nil
}

// getJSON performs one GET with a single retry on a rate-limit or
// server-error status.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	status, err := c.tryGetJSON(ctx, rawURL, out)
	if err != nil && (status == http.StatusTooManyRequests || status >= 500) {
		logrus.WithError(err).Warn("[DEXSCREENER] Transient failure, retrying once")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
		_, err = c.tryGetJSON(ctx, rawURL, out)
	}
	return err
}

func (c *Client) tryGetJSON(ctx context.Context, rawURL string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, pkgError.UpstreamError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, pkgError.UpstreamError(fmt.Sprintf("dexscreener: %s returned status %d", rawURL, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, pkgError.UpstreamError("dexscreener: failed to decode response: " + err.Error())
	}
	return resp.StatusCode, nil
}

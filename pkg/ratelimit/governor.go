package ratelimit

import (
	"sync"
	"time"
)

// Defaults tuned for a chat bot: 5 requests burst, one fresh token
// every 6 seconds, and at least 900ms between any two admitted
// requests from the same chat.
const (
	DefaultCapacity       = 5
	DefaultRefillInterval = 6 * time.Second
	DefaultMinGap         = 900 * time.Millisecond
)

// Deny reasons. The surface turns these into user-facing wording.
const (
	ReasonSlowDown  = "slow down"
	ReasonExhausted = "exhausted"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration
}

type bucket struct {
	tokens         int
	lastRefillAt   time.Time
	lastAdmittedAt time.Time
}

// Governor applies per-conversation token-bucket admission control with
// an independent minimum-gap anti-burst rule. Both dimensions must
// pass: the bucket bounds sustained throughput, the gap bounds burst
// spacing regardless of token supply.
//
// Buckets are created lazily and kept for the process lifetime;
// unbounded growth is an accepted tradeoff for a single instance.
type Governor struct {
	mu       sync.Mutex
	buckets  map[int64]*bucket
	capacity int
	refill   time.Duration
	minGap   time.Duration

	now func() time.Time
}

func NewGovernor(capacity int, refillInterval, minGap time.Duration) *Governor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if refillInterval <= 0 {
		refillInterval = DefaultRefillInterval
	}
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	return &Governor{
		buckets:  make(map[int64]*bucket),
		capacity: capacity,
		refill:   refillInterval,
		minGap:   minGap,
		now:      time.Now,
	}
}

// Admit decides whether one inbound action from the given conversation
// may proceed. Denials never consume a token.
func (g *Governor) Admit(chatID int64) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	b, ok := g.buckets[chatID]
	if !ok {
		b = &bucket{tokens: g.capacity, lastRefillAt: now}
		g.buckets[chatID] = b
	}

	// Refill whole intervals only, advancing the refill mark by the
	// consumed intervals rather than to now so fractional elapsed time
	// is never lost.
	if elapsed := now.Sub(b.lastRefillAt); elapsed >= g.refill {
		n := int(elapsed / g.refill)
		b.tokens += n
		if b.tokens > g.capacity {
			b.tokens = g.capacity
		}
		b.lastRefillAt = b.lastRefillAt.Add(time.Duration(n) * g.refill)
	}

	if !b.lastAdmittedAt.IsZero() {
		if gap := now.Sub(b.lastAdmittedAt); gap < g.minGap {
			return Decision{Allowed: false, Reason: ReasonSlowDown, RetryAfter: g.minGap - gap}
		}
	}

	if b.tokens == 0 {
		return Decision{
			Allowed:    false,
			Reason:     ReasonExhausted,
			RetryAfter: b.lastRefillAt.Add(g.refill).Sub(now),
		}
	}

	b.tokens--
	b.lastAdmittedAt = now
	return Decision{Allowed: true}
}

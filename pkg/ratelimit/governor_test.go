package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestGovernor() (*Governor, *fakeClock) {
	g := NewGovernor(5, 6*time.Second, 900*time.Millisecond)
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g.now = clk.now
	return g, clk
}

func TestGovernor_BurstThenExhausted(t *testing.T) {
	g, clk := newTestGovernor()
	const chat = int64(1001)

	// 5 admissions spaced over the gap all succeed.
	for i := 0; i < 5; i++ {
		d := g.Admit(chat)
		require.True(t, d.Allowed, "admission %d should pass", i+1)
		clk.advance(time.Second)
	}

	// 6th inside the same refill window is denied with a retry estimate.
	d := g.Admit(chat)
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonExhausted, d.Reason)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	// After a full refill interval exactly one more admission succeeds.
	clk.advance(6 * time.Second)
	d = g.Admit(chat)
	assert.True(t, d.Allowed)

	// Before the next refill tick the bucket is empty again.
	clk.advance(950 * time.Millisecond)
	d = g.Admit(chat)
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonExhausted, d.Reason)
}

func TestGovernor_MinGapDeniesEvenWithTokens(t *testing.T) {
	g, clk := newTestGovernor()
	const chat = int64(2002)

	require.True(t, g.Admit(chat).Allowed)

	clk.advance(100 * time.Millisecond)
	d := g.Admit(chat)
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonSlowDown, d.Reason)

	// Gap denial must not consume a token: 4 more spaced admissions
	// still fit in the bucket.
	for i := 0; i < 4; i++ {
		clk.advance(time.Second)
		assert.True(t, g.Admit(chat).Allowed)
	}
}

func TestGovernor_RefillKeepsFractionalProgress(t *testing.T) {
	g, clk := newTestGovernor()
	const chat = int64(3003)

	// Drain the bucket.
	for i := 0; i < 5; i++ {
		require.True(t, g.Admit(chat).Allowed)
		clk.advance(time.Second)
	}
	// 5s elapsed since creation: no refill yet, and the refill mark must
	// not move, otherwise the partial 5s would be lost.
	require.False(t, g.Admit(chat).Allowed)

	// 1 more second completes the first interval.
	clk.advance(time.Second)
	assert.True(t, g.Admit(chat).Allowed)
}

func TestGovernor_ConversationsAreIndependent(t *testing.T) {
	g, clk := newTestGovernor()

	for i := 0; i < 5; i++ {
		require.True(t, g.Admit(1).Allowed)
		clk.advance(time.Second)
	}
	require.False(t, g.Admit(1).Allowed)

	// A fresh conversation starts with a full bucket.
	assert.True(t, g.Admit(2).Allowed)
}

func TestGovernor_RefillCappedAtCapacity(t *testing.T) {
	g, clk := newTestGovernor()
	const chat = int64(4004)

	require.True(t, g.Admit(chat).Allowed)

	// A long idle period must not overfill the bucket.
	clk.advance(10 * time.Minute)
	allowed := 0
	for i := 0; i < 10; i++ {
		if g.Admit(chat).Allowed {
			allowed++
		}
		clk.advance(time.Second)
	}
	assert.Equal(t, 6, allowed, "capacity 5 plus one token refilled during the loop")
}

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tokenchecker/internal/metrics"
)

// API represents the different upstreams we call
type API string

const (
	// APIRPC is the Solana JSON-RPC endpoint
	APIRPC API = "rpc"
	// APIDexScreener is the market-pair source
	APIDexScreener API = "dexscreener"
	// APIJupiter is the token registry source
	APIJupiter API = "jupiter"
	// APICoinGecko is the native-currency price source
	APICoinGecko API = "coingecko"
)

// Rates maps an API to requests per second. Zero or negative means unlimited.
type Rates map[API]float64

// DefaultRates are conservative limits for the free public tiers.
// Public mainnet RPC allows 100 requests / 10s per IP, DexScreener 300/min,
// CoinGecko's demo tier roughly 30/min.
func DefaultRates() Rates {
	return Rates{
		APIRPC:         10,
		APIDexScreener: 5,
		APIJupiter:     1,
		APICoinGecko:   0.5,
	}
}

// Limiter holds one token bucket per API. A nil *Limiter never blocks.
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter with the given per-API rates.
func New(rates Rates) *Limiter {
	l := &Limiter{limiters: make(map[API]*rate.Limiter, len(rates))}
	for api, rps := range rates {
		l.Set(api, rps)
	}
	return l
}

// Set replaces the rate of one API.
func (l *Limiter) Set(api API, rps float64) {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}

	l.mu.Lock()
	l.limiters[api] = rate.NewLimiter(limit, 1)
	l.mu.Unlock()
}

func (l *Limiter) get(api API) *rate.Limiter {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limiters[api]
}

// Wait blocks until the limiter permits one request to api, or ctx is done.
// Exactly one token is consumed per call.
func (l *Limiter) Wait(ctx context.Context, api API) error {
	limiter := l.get(api)
	if limiter == nil {
		return nil
	}

	r := limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("ratelimit %s: cannot reserve token", api)
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	metrics.RateLimitWaits.WithLabelValues(string(api)).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

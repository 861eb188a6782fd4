/*
Package limiter provides per-client rate limiting for HTTP routes.

Each client key (the request's remote IP) gets its own token bucket (rate.Limiter).
Buckets that have been idle for longer than the idle timeout are dropped by a
background sweep that stops when the supplied context is cancelled.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

const (
	defaultSweepInterval = 3 * time.Minute
	defaultIdleTimeout   = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter rate limits requests per client key.
type KeyedLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	r rate.Limit
	b int

	idleTimeout time.Duration
	now         func() time.Time
}

// New returns a KeyedLimiter allowing r events per second with bursts of b per key.
func New(r rate.Limit, b int) *KeyedLimiter {
	return &KeyedLimiter{
		visitors:    make(map[string]*visitor),
		r:           r,
		b:           b,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
	}
}

// Allow reports whether an event for key may happen now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.b)}
		l.visitors[key] = v
	}
	now := l.now()
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Sweep drops keys idle for longer than the idle timeout and returns how many were removed.
func (l *KeyedLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTimeout)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle keys periodically until ctx is done.
func (l *KeyedLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := l.Sweep()
			logx.Logger().Debug().
				Str("component", "limiter").
				Int("removed", removed).
				Int("active", l.Len()).
				Msg("Rate limiter sweep finished.")
		}
	}
}

// Middleware rejects requests over the limit with 429.
// It relies on chi's RealIP middleware having normalised RemoteAddr.
func (l *KeyedLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !l.Allow(ip) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ead/authuser/internal/model"
)

// KeyFunc picks the bucket a request is charged against
type KeyFunc func(r *http.Request) string

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Sustained requests per window (default 100)
	Window  time.Duration // Refill window (default 1 minute)
	Burst   int           // Extra capacity above Rate (default 20)
	Cleanup time.Duration // Idle bucket sweep interval (default 5 minutes)
	KeyFunc KeyFunc       // Bucket key (default ClientIP)
	Now     func() time.Time
}

// Decision is the outcome of charging one request to a bucket
type Decision struct {
	Allowed    bool
	Remaining  int
	Reset      time.Time     // when the bucket is full again
	RetryAfter time.Duration // zero when allowed
}

// RateLimiter is a keyed token bucket. Each bucket holds up to Rate+Burst
// tokens and regains Rate tokens per Window, continuously.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*tokenBucket
	limit    int
	window   time.Duration
	burst    int
	capacity float64
	interval time.Duration // time to regain one token
	sweep    time.Duration
	keyFunc  KeyFunc
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type tokenBucket struct {
	tokens  float64
	updated time.Time
}

// NewRateLimiter creates a limiter and starts its idle-bucket sweeper
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	interval := cfg.Window / time.Duration(cfg.Rate)
	if interval <= 0 {
		interval = time.Nanosecond
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*tokenBucket),
		limit:    cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		capacity: float64(cfg.Rate + cfg.Burst),
		interval: interval,
		sweep:    cfg.Cleanup,
		keyFunc:  cfg.KeyFunc,
		now:      cfg.Now,
		done:     make(chan struct{}),
	}

	go rl.sweepLoop()

	return rl
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Limit returns the sustained number of requests per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweepIdle()
		case <-rl.done:
			return
		}
	}
}

// sweepIdle drops buckets untouched for two windows. Such a bucket would be
// full again, so forgetting it changes nothing for the client.
func (rl *RateLimiter) sweepIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.updated.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Take charges one request to key
func (rl *RateLimiter) Take(key string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: rl.capacity, updated: now}
		rl.buckets[key] = b
	} else {
		rl.refill(b, now)
	}

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) * float64(rl.interval))
		return Decision{
			Allowed:    false,
			Remaining:  0,
			Reset:      rl.fullAt(b, now),
			RetryAfter: wait,
		}
	}

	b.tokens--
	return Decision{
		Allowed:   true,
		Remaining: int(math.Floor(b.tokens)),
		Reset:     rl.fullAt(b, now),
	}
}

func (rl *RateLimiter) refill(b *tokenBucket, now time.Time) {
	elapsed := now.Sub(b.updated)
	if elapsed <= 0 {
		return
	}
	b.tokens = math.Min(rl.capacity, b.tokens+float64(elapsed)/float64(rl.interval))
	b.updated = now
}

func (rl *RateLimiter) fullAt(b *tokenBucket, now time.Time) time.Time {
	missing := rl.capacity - b.tokens
	return now.Add(time.Duration(missing * float64(rl.interval)))
}

// RateLimit returns a middleware that rejects requests over the limit with 429
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Take(limiter.keyFunc(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			h.Set("Retry-After", strconv.Itoa(secs))
			model.NewRateLimitError(secs).WriteJSON(w)
		})
	}
}

// ClientIP returns the caller's address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package guards

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/rpckit/core"
	"github.com/dmitrymomot/rpckit/execctx"
	"github.com/dmitrymomot/rpckit/pkg/clientip"
)

// ThrottleConfig defines a token bucket.
type ThrottleConfig struct {
	Capacity       int           // burst size
	RefillRate     int           // tokens added per interval
	RefillInterval time.Duration // how often tokens are added
}

func (c ThrottleConfig) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidThrottle, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidThrottle, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidThrottle, c.RefillInterval)
	}
	return nil
}

// ThrottleStore keeps bucket state. ConsumeTokens returns the tokens left
// after consuming; a negative value means the request did not fit and
// nothing was consumed.
type ThrottleStore interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg ThrottleConfig) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// KeyFunc derives the bucket key of a call.
type KeyFunc func(ctx execctx.Context) string

// ByHandler keys buckets by module and handler, so all callers share one bucket.
func ByHandler(ctx execctx.Context) string {
	name := ""
	if ref := ctx.Handler(); ref != nil {
		name = ref.FullName()
	}
	return ctx.Module() + ":" + name
}

// ByClientIP keys buckets per handler and client IP. Calls without an HTTP
// request share the handler bucket.
func ByClientIP(ctx execctx.Context) string {
	key := ByHandler(ctx)
	if ip := clientip.FromRequest(ctx.SwitchToHTTP().Request()); ip != "" {
		key += ":" + ip
	}
	return key
}

// Throttle returns a guard that rejects calls with a too-many-requests
// error once the bucket for key is empty.
func Throttle(store ThrottleStore, cfg ThrottleConfig, key KeyFunc) (Guard, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if key == nil {
		key = ByHandler
	}
	return GuardFunc(func(ctx execctx.Context) (bool, error) {
		remaining, resetAt, err := store.ConsumeTokens(ctx, key(ctx), 1, cfg)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if remaining < 0 {
			retry := time.Until(resetAt).Round(time.Second)
			return false, core.ErrTooManyRequests.WithMessage(fmt.Sprintf("Too many requests, retry in %s", retry))
		}
		return true, nil
	}), nil
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore is an in-process ThrottleStore.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates a store. When cleanup is positive, buckets idle
// for more than an hour are dropped on that interval until Close.
func NewMemoryStore(cleanup time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if cleanup > 0 {
		go ms.cleanup(cleanup)
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg ThrottleConfig) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Cap intervals to avoid overflow on long idle buckets.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}
	b.lastAccess = now

	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ms.removeStale(time.Hour)
		case <-ms.stop:
			return
		}
	}
}

func (ms *MemoryStore) removeStale(threshold time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > threshold {
			delete(ms.buckets, key)
		}
	}
}

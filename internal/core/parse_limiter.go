package core

// parse_limiter.go bounds the number of files being parsed at once.
//
// Each parse holds one file handle and the whole decoded result in memory,
// so the limiter keeps a burst of requests from exhausting either. When all
// slots are taken a caller waits up to maxWait and then fails with ErrBusy.
//
// WaitForDrain lets shutdown block until in-flight parses finish.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrentParses is the slot count used when none is configured.
const DefaultMaxConcurrentParses = 8

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// ParseLimiter is a counting semaphore for parse operations.
type ParseLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewParseLimiter allows at most maxConcurrent parses at once. Callers that
// cannot get a slot within maxWait receive an error wrapping ErrBusy.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ParseLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must call Release
// once the parse is done.
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return nil
	case <-timer.C:
		return newError(ErrBusy, "acquire", "",
			"Too many files are being parsed, please try again later.", nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *ParseLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ParseLimiter) Release() {
	l.track(-1)
	<-l.semaphore
}

func (l *ParseLimiter) track(delta int) {
	l.mu.Lock()
	l.active += delta
	l.mu.Unlock()
}

// ActiveCount returns the number of parses holding a slot.
func (l *ParseLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *ParseLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *ParseLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no parse holds a slot or ctx is done.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a point-in-time view of a ParseLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health checks.
func (l *ParseLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}

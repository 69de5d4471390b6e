// Package audit records one entry per parse request.
//
// Entries are queued and written by a single background goroutine, so a slow
// or unavailable database never delays a response. When the queue is full
// new entries are dropped and a warning is logged.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single audit record.
type Entry struct {
	ID           uuid.UUID     `json:"id"`
	RequestID    string        `json:"requestId,omitempty"`
	Route        string        `json:"route"`
	Input        string        `json:"input"`
	ResolvedPath string        `json:"resolvedPath,omitempty"`
	Status       int           `json:"status"`
	Rows         int           `json:"rows"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Store persists entries.
type Store interface {
	Insert(ctx context.Context, e Entry) error
	Close()
}

// ErrClosed is returned by Close when the recorder was already closed.
var ErrClosed = errors.New("audit recorder closed")

// Recorder queues entries for a Store. A nil *Recorder is valid and
// discards everything, which is how auditing is disabled.
type Recorder struct {
	store        Store
	queue        chan Entry
	done         chan struct{}
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts the writer goroutine. Call Close to drain and stop it.
func NewRecorder(store Store, queueSize int, writeTimeout time.Duration) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	r := &Recorder{
		store:        store,
		queue:        make(chan Entry, queueSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	go r.run()
	return r
}

// Record enqueues e without blocking. ID and CreatedAt are filled in when
// unset. It reports whether the entry was accepted.
func (r *Recorder) Record(e Entry) bool {
	if r == nil {
		return false
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- e:
		return true
	default:
		slog.Warn("audit: queue full, dropping entry",
			"request_id", e.RequestID,
			"input", e.Input,
		)
		return false
	}
}

// Close stops accepting entries, waits for queued ones to be written and
// closes the store. It gives up when ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	select {
	case <-r.done:
		r.store.Close()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		if err := r.store.Insert(ctx, e); err != nil {
			slog.Error("audit: insert failed",
				"id", e.ID.String(),
				"request_id", e.RequestID,
				"error", err,
			)
		}
		cancel()
	}
}

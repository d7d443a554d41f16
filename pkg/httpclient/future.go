package httpclient

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is the settlement error of a Future cancelled before it completed.
var ErrCancelled = errors.New("request cancelled")

// Future is a pending transport call that settles exactly once, either to an
// optional RawResponse (nil meaning no answer) or to an error.
type Future struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	settled bool
	resp    *RawResponse
	err     error
}

// NewFuture returns an unsettled Future. Settle it with Complete.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Go runs fetch on its own goroutine and settles the returned Future with its result.
// The context passed to fetch is cancelled when the Future is cancelled.
func Go(ctx context.Context, fetch func(ctx context.Context) (*RawResponse, error)) *Future {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	f := &Future{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer cancel()
		resp, err := fetch(ctx)
		f.Complete(resp, err)
	}()
	return f
}

// Completed returns a Future already settled with resp.
func Completed(resp *RawResponse) *Future {
	f := NewFuture()
	f.Complete(resp, nil)
	return f
}

// Complete settles the Future. It reports false if the Future had already settled.
func (f *Future) Complete(resp *RawResponse, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settled {
		return false
	}
	f.settled = true
	f.resp = resp
	f.err = err
	close(f.done)
	return true
}

// Cancel settles the Future with ErrCancelled and aborts the in-flight call.
// It reports false if the Future had already settled.
func (f *Future) Cancel() bool {
	if !f.Complete(nil, ErrCancelled) {
		return false
	}
	if f.cancel != nil {
		f.cancel()
	}
	return true
}

// Done is closed once the Future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// IsDone reports whether the Future has settled.
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value. Before settlement it returns (nil, nil);
// check Done or IsDone first.
func (f *Future) Result() (*RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resp, f.err
}

// Wait blocks until the Future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (*RawResponse, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

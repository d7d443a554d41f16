package sdk

import (
	"context"
	"errors"
	"sync"

	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// Handle is a pending transport call. *httpclient.Future implements it.
type Handle interface {
	// Done is closed once the call settles.
	Done() <-chan struct{}
	// Result returns the settled raw response (nil for no answer) or the
	// fault that prevented one, such as ErrCancelled.
	Result() (*httpclient.RawResponse, error)
	// Cancel asks the transport to abandon the call and reports whether it
	// did so before settlement.
	Cancel() bool
}

// Handlers is a set of outcome callbacks. Nil fields keep the default
// diagnostic action.
type Handlers[T any] struct {
	OnSuccess  func(T)
	OnError    func(ErrorData)
	OnNoAnswer func()
}

// orElse fills the nil callbacks of hs from other.
func (hs Handlers[T]) orElse(other Handlers[T]) Handlers[T] {
	if hs.OnSuccess == nil {
		hs.OnSuccess = other.OnSuccess
	}
	if hs.OnError == nil {
		hs.OnError = other.OnError
	}
	if hs.OnNoAnswer == nil {
		hs.OnNoAnswer = other.OnNoAnswer
	}
	return hs
}

// Promise delivers the classified outcome of a Handle. It settles exactly once;
// at that moment the callback registered for the outcome runs, or a warning is
// logged if there is none.
type Promise[T any] struct {
	handle Handle
	dec    serialization.Deserializer
	log    Logger

	// closed after the outcome callback returned, or after a fault was recorded.
	settled chan struct{}

	mu         sync.Mutex
	onSuccess  func(T)
	onError    func(ErrorData)
	onNoAnswer func()
	done       bool
	resp       Response[T]
	hasResp    bool
	err        error
}

// Of wraps h in a Promise decoding successful bodies into T.
// It panics with a *MisuseError if h is nil.
func Of[T any](h Handle, opts ...Option) *Promise[T] {
	return OfHandlers(h, Handlers[T]{}, opts...)
}

// OfHandlers is Of with callbacks installed before the handle is observed, so
// none of them can miss a fast settlement.
func OfHandlers[T any](h Handle, hs Handlers[T], opts ...Option) *Promise[T] {
	if h == nil {
		panic(&MisuseError{Op: "Of", Reason: "without a transport handle"})
	}
	if f, ok := h.(*httpclient.Future); ok && f == nil {
		panic(&MisuseError{Op: "Of", Reason: "with a nil *httpclient.Future"})
	}

	o := applyOptions(opts)
	if o.handlers != nil {
		extra, ok := o.handlers.(Handlers[T])
		if !ok {
			panic(&MisuseError{Op: "Of", Reason: "with handlers for a type other than " + serialization.TypeName[T]()})
		}
		hs = hs.orElse(extra)
	}

	p := &Promise[T]{
		handle:     h,
		dec:        o.dec,
		log:        o.log,
		settled:    make(chan struct{}),
		onSuccess:  hs.OnSuccess,
		onError:    hs.OnError,
		onNoAnswer: hs.OnNoAnswer,
	}
	go p.await()
	return p
}

func (p *Promise[T]) await() {
	<-p.handle.Done()

	raw, err := p.handle.Result()
	if err != nil {
		p.fail(err)
		return
	}

	resp, err := Classify[T](raw, p.dec)
	if err != nil {
		var derr *DeserializationError
		if errors.As(err, &derr) {
			p.log.ErrorObj("failed to deserialize successful response", "deserialization_error", map[string]any{
				"type":    derr.TypeName,
				"content": derr.Content,
				"error":   derr.Err.Error(),
			})
		}
		p.fail(err)
		return
	}
	p.dispatch(resp)
}

func (p *Promise[T]) fail(err error) {
	p.mu.Lock()
	p.done = true
	p.err = err
	p.mu.Unlock()

	if errors.Is(err, ErrCancelled) {
		p.log.DebugObj("request cancelled before settlement, no callback fired", "promise_cancelled", map[string]any{
			"type": serialization.TypeName[T](),
		})
	} else if !errors.As(err, new(*DeserializationError)) {
		p.log.ErrorObj("request failed unexpectedly, no callback fired", "promise_error", map[string]any{
			"type":  serialization.TypeName[T](),
			"error": err.Error(),
		})
	}
	close(p.settled)
}

func (p *Promise[T]) dispatch(resp Response[T]) {
	p.mu.Lock()
	p.done = true
	p.resp = resp
	p.hasResp = true
	onSuccess, onError, onNoAnswer := p.onSuccess, p.onError, p.onNoAnswer
	p.mu.Unlock()

	defer close(p.settled)
	defer func() {
		if r := recover(); r != nil {
			perr := &CallbackPanicError{Outcome: resp.Outcome(), Value: r}
			p.mu.Lock()
			p.err = perr
			p.mu.Unlock()
			p.log.ErrorObj("outcome callback panicked", "promise_callback_panic", map[string]any{
				"outcome": resp.Outcome().String(),
				"panic":   perr.Error(),
			})
		}
	}()

	switch resp.Outcome() {
	case OutcomeSuccessful:
		if onSuccess == nil {
			p.log.WarnObj("successfully obtained data, but no 'onSuccess' callback is set; ignoring result", "unhandled_outcome", map[string]any{
				"outcome": resp.Outcome().String(),
				"type":    serialization.TypeName[T](),
			})
			return
		}
		onSuccess(resp.data)
	case OutcomeAPIError:
		if onError == nil {
			p.log.WarnObj("API responded with error, but no 'onError' callback is set; ignoring error", "unhandled_outcome", map[string]any{
				"outcome":     resp.Outcome().String(),
				"status_code": resp.errData.StatusCode,
				"message":     resp.errData.ErrorMessage,
			})
			return
		}
		onError(resp.errData)
	default:
		if onNoAnswer == nil {
			p.log.WarnObj("API failed to respond, but no 'onNoAnswer' callback is set; ignoring", "unhandled_outcome", map[string]any{
				"outcome": resp.Outcome().String(),
			})
			return
		}
		onNoAnswer()
	}
}

// OnSuccess sets the callback for a successful response, replacing any previous
// one. A nil callback restores the default. Registering after settlement does
// not invoke the callback.
func (p *Promise[T]) OnSuccess(cb func(T)) *Promise[T] {
	p.mu.Lock()
	p.onSuccess = cb
	p.mu.Unlock()
	return p
}

// OnError sets the callback for an API error response, replacing any previous one.
func (p *Promise[T]) OnError(cb func(ErrorData)) *Promise[T] {
	p.mu.Lock()
	p.onError = cb
	p.mu.Unlock()
	return p
}

// OnNoAnswer sets the callback for a request that got no answer, replacing any previous one.
func (p *Promise[T]) OnNoAnswer(cb func()) *Promise[T] {
	p.mu.Lock()
	p.onNoAnswer = cb
	p.mu.Unlock()
	return p
}

// IsDone reports whether the request has settled, whatever the outcome.
func (p *Promise[T]) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Cancel asks the transport to abandon the request. If it wins the race with
// settlement, no callback fires and Join returns ErrCancelled.
func (p *Promise[T]) Cancel() bool {
	return p.handle.Cancel()
}

// Join blocks until the request settled and its callback returned. It returns
// nil for any of the three outcomes, and the fault otherwise: ErrCancelled, a
// *DeserializationError, a *CallbackPanicError or a transport error.
func (p *Promise[T]) Join() error {
	<-p.settled
	return p.Err()
}

// JoinContext is Join bounded by ctx. It returns ctx.Err() if ctx ends first.
func (p *Promise[T]) JoinContext(ctx context.Context) error {
	select {
	case <-p.settled:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the recorded fault without blocking, nil while pending.
func (p *Promise[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Response returns the classified response once available. It reports false
// while pending and when the request ended in a fault.
func (p *Promise[T]) Response() (Response[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resp, p.hasResp
}

package sdk

import (
	"errors"
	"fmt"

	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// ErrCancelled is returned by Join when the request was cancelled before it settled.
var ErrCancelled = httpclient.ErrCancelled

// DeserializationError is the fault raised when a successful body does not fit the requested type.
type DeserializationError = serialization.DeserializationError

// MisuseError is the panic value for programmer errors, such as reading the
// data of a response that was not successful.
type MisuseError struct {
	Op     string
	Reason string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("sdk misuse: calling '%s' %s", e.Op, e.Reason)
}

// CallbackPanicError wraps a panic raised inside an outcome callback.
type CallbackPanicError struct {
	Outcome Outcome
	Value   any
}

func (e *CallbackPanicError) Error() string {
	return fmt.Sprintf("panic in %s callback: %v", e.Outcome, e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *CallbackPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsCancelled reports whether err signals a cancelled request.
func IsCancelled(err error) bool { return errors.Is(err, ErrCancelled) }

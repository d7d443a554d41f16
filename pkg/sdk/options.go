package sdk

import (
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// Logger is the structured logging surface used for outcome diagnostics.
type Logger = logger.Logger

// Option configures a Promise.
type Option func(*options)

type options struct {
	dec      serialization.Deserializer
	log      Logger
	handlers any
}

// WithDeserializer selects how successful bodies are decoded. Defaults to JSON.
func WithDeserializer(d serialization.Deserializer) Option {
	return func(o *options) {
		if d != nil {
			o.dec = d
		}
	}
}

// WithLogger selects where diagnostics go. Defaults to logger.Default, which
// never drops warnings.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithHandlers installs hs before the promise observes its handle, like
// OfHandlers. It lets callers of APIs that build the promise themselves avoid
// missing a fast settlement. Using it on a promise of a type other than T
// panics with a *MisuseError.
func WithHandlers[T any](hs Handlers[T]) Option {
	return func(o *options) {
		o.handlers = hs
	}
}

func applyOptions(opts []Option) options {
	o := options{
		dec: serialization.JSON(),
		log: logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

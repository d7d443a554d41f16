// Package gw2api groups the API endpoints into components. Every operation
// returns a *sdk.Promise delivering the classified outcome of its request.
package gw2api

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/sdk"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// ErrHTTPClientRequired is the panic value (wrapped with the component name)
// when a component is built without a client.
var ErrHTTPClientRequired = errors.New("an http client is required")

// Fetcher starts asynchronous GET requests. *httpclient.APIClient implements it.
type Fetcher interface {
	FetchAsync(ctx context.Context, path string) (*httpclient.Future, error)
}

// InvalidParamError reports an operation parameter rejected before any request is sent.
type InvalidParamError struct {
	Param   string
	Value   any
	Reasons []string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("the parameter '%s' has invalid value '%v'. Reasons: %s",
		e.Param, e.Value, strings.Join(e.Reasons, "; "))
}

// Option configures a component.
type Option func(*component)

// WithLogger sets the logger used by the component and its promises.
func WithLogger(l logger.Logger) Option {
	return func(c *component) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDeserializer sets the deserializer handed to every promise.
func WithDeserializer(d serialization.Deserializer) Option {
	return func(c *component) {
		if d != nil {
			c.dec = d
		}
	}
}

type component struct {
	name   string
	client Fetcher
	dec    serialization.Deserializer
	log    logger.Logger
}

func newComponent(name string, client Fetcher, opts []Option) component {
	if isNil(client) {
		panic(fmt.Errorf("%s: %w", name, ErrHTTPClientRequired))
	}
	c := component{
		name:   name,
		client: client,
		dec:    serialization.JSON(),
		log:    logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	c.log.DebugObj("api component initialized", "component", name)
	return c
}

func isNil(client Fetcher) bool {
	if client == nil {
		return true
	}
	v := reflect.ValueOf(client)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// get issues the request for path and wraps it into a promise of T. Per-call
// opts are applied after the component defaults.
func get[T any](ctx context.Context, c component, path string, opts []sdk.Option) (*sdk.Promise[T], error) {
	f, err := c.client.FetchAsync(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	all := append([]sdk.Option{sdk.WithDeserializer(c.dec), sdk.WithLogger(c.log)}, opts...)
	return sdk.Of[T](f, all...), nil
}

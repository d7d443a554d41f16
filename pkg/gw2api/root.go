package gw2api

import (
	"context"

	"github.com/gw2sdk/gw2sdk-go/pkg/sdk"
)

// RootAPI covers the root of the API, which lists and describes its versions.
// None of its operations need an API key.
type RootAPI struct {
	component
}

// NewRootAPI builds the root component. It panics if client is nil.
func NewRootAPI(client Fetcher, opts ...Option) *RootAPI {
	return &RootAPI{component: newComponent("RootAPI", client, opts)}
}

// Versions lists the API versions. opts configure the returned promise, for
// instance sdk.WithHandlers.
func (a *RootAPI) Versions(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[[]string], error) {
	a.log.DebugObj("fetching all API versions", "path", "/")
	return get[[]string](ctx, a.component, "", opts)
}

// Version1Info returns the v1 description. The API answers with plain text.
func (a *RootAPI) Version1Info(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[string], error) {
	a.log.DebugObj("fetching API v1 information", "path", "/v1")
	return get[string](ctx, a.component, "/v1", opts)
}

// Version2Info returns the v2 description, as plain text.
func (a *RootAPI) Version2Info(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[string], error) {
	a.log.DebugObj("fetching API v2 information", "path", "/v2")
	return get[string](ctx, a.component, "/v2", opts)
}

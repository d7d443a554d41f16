package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations must not treat 4xx/5xx status codes as errors; an error means
// no response was obtained at all.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// RawResponse is exactly what the transport returned for a request.
type RawResponse struct {
	Content    string
	StatusCode int
}

// NewRawResponse copies a transport response into a RawResponse.
func NewRawResponse(resp Response) *RawResponse {
	if resp == nil {
		return nil
	}
	return &RawResponse{Content: string(resp.Body()), StatusCode: resp.StatusCode()}
}

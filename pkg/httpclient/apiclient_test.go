package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/auth"
)

const testToken = "564F181A-F0FC-114A-A55D-3C1DCD45F3767AF3848F-AB29-4EBF-9594-F91E6A75E015"

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *APIClient {
	t.Helper()
	c, err := NewAPIClient(Options{
		Client:  NewRestyClient(0),
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  logger.NopLogger{},
	})
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	return c
}

func TestFetchAsyncSendsHeadersAndReturnsRawResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/achievements" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get(SchemaVersionHeader); got != DefaultSchemaVersion {
			t.Errorf("missing schema header, got %q", got)
		}
		if got := r.Header.Get(AuthorizationHeader); got != "Bearer "+testToken {
			t.Errorf("missing auth header, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Second)
	key, err := auth.NewAPIKey(testToken)
	if err != nil {
		t.Fatalf("NewAPIKey: %v", err)
	}
	c.SetAPIKey(key)

	f, err := c.FetchAsync(context.Background(), "/v2/achievements")
	if err != nil {
		t.Fatalf("FetchAsync: %v", err)
	}
	resp, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusOK || resp.Content != "[1,2,3]" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestFetchAsyncKeepsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`Error!`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Second)
	f, err := c.FetchAsync(context.Background(), "/v2/account")
	if err != nil {
		t.Fatalf("FetchAsync: %v", err)
	}
	resp, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized || resp.Content != "Error!" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestFetchAsyncTimeoutIsNoAnswer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, 50*time.Millisecond)
	f, err := c.FetchAsync(context.Background(), "/slow")
	if err != nil {
		t.Fatalf("FetchAsync: %v", err)
	}
	resp, err := f.Wait(context.Background())
	if err != nil || resp != nil {
		t.Fatalf("expected no answer, got %+v, %v", resp, err)
	}
}

func TestFetchAsyncConnectionFailureIsNoAnswer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, time.Second)
	f, err := c.FetchAsync(context.Background(), "/v2")
	if err != nil {
		t.Fatalf("FetchAsync: %v", err)
	}
	resp, err := f.Wait(context.Background())
	if err != nil || resp != nil {
		t.Fatalf("expected no answer, got %+v, %v", resp, err)
	}
}

func TestFetchAsyncParentCancellationIsFault(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, srv.URL, 5*time.Second)
	f, err := c.FetchAsync(ctx, "/slow")
	if err != nil {
		t.Fatalf("FetchAsync: %v", err)
	}
	cancel()

	_, err = f.Wait(context.Background())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestFetchAsyncRejectsRelativePath(t *testing.T) {
	c := newTestClient(t, "http://localhost", time.Second)
	_, err := c.FetchAsync(context.Background(), "v2")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
}

func TestNewAPIClientValidatesTimeout(t *testing.T) {
	if _, err := NewAPIClient(Options{Timeout: -time.Second}); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
	c, err := NewAPIClient(Options{Logger: logger.NopLogger{}})
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	if c.Timeout() != DefaultTimeout {
		t.Fatalf("expected default timeout, got %v", c.Timeout())
	}
	if err := c.SetTimeout(0); err == nil {
		t.Fatalf("expected SetTimeout(0) to fail")
	}
}

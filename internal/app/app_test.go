package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/publishers"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path + "?" + r.URL.RawQuery {
		case "/?":
			_, _ = w.Write([]byte(`["v1","v2"]`))
		case "/v2?":
			_, _ = w.Write([]byte("v2 endpoints"))
		case "/v2/achievements?":
			_, _ = w.Write([]byte(`[1,2,3]`))
		case "/v2/achievements?ids=1,2":
			_, _ = w.Write([]byte(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"text":"no such id"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AppName:                "gw2sdk-test",
		APIBaseURL:             baseURL,
		SchemaVersion:          config.DefaultSchemaVersion,
		TimeoutSeconds:         2,
		Timeout:                2 * time.Second,
		PollInterval:           time.Hour,
		StorageType:            "memory",
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	client, err := NewAPIClient(testConfig(fakeAPI(t).URL), logger.NopLogger{})
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	return NewFetcher(client, serialization.JSON(), logger.NopLogger{})
}

func TestFetchOperations(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	res, err := f.Fetch(ctx, "versions", nil)
	if err != nil || !res.Succeeded() {
		t.Fatalf("versions: %+v, %v", res, err)
	}
	if got, ok := res.Data.([]string); !ok || len(got) != 2 {
		t.Fatalf("unexpected versions data %#v", res.Data)
	}

	res, err = f.Fetch(ctx, "V2", nil)
	if err != nil || res.Data != "v2 endpoints" || res.Operation != "v2" {
		t.Fatalf("v2: %+v, %v", res, err)
	}

	res, err = f.Fetch(ctx, "achievements", []string{"1,2", "2"})
	if err != nil || !res.Succeeded() {
		t.Fatalf("achievements: %+v, %v", res, err)
	}

	res, err = f.Fetch(ctx, "achievement", []string{"42"})
	if err != nil {
		t.Fatalf("achievement: %v", err)
	}
	if res.Outcome != "api_error" || res.StatusCode != 404 || res.Error != "no such id" {
		t.Fatalf("unexpected api error result %+v", res)
	}
}

func TestFetchHandlesEveryOutcomeWithoutWarnings(t *testing.T) {
	client, err := NewAPIClient(testConfig(fakeAPI(t).URL), logger.NopLogger{})
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	core, logs := observer.New(zapcore.WarnLevel)
	f := NewFetcher(client, serialization.JSON(), logger.New(zap.New(core)))

	for _, tc := range []struct {
		op      string
		args    []string
		outcome string
	}{
		{"achievement-ids", nil, "successful"},
		{"v2", nil, "successful"},
		{"achievement", []string{"42"}, "api_error"},
	} {
		res, err := f.Fetch(context.Background(), tc.op, tc.args)
		if err != nil || res.Outcome != tc.outcome {
			t.Fatalf("%s: %+v, %v", tc.op, res, err)
		}
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected warnings: %v", logs.All())
	}
}

func TestFetchRejectsBadInput(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, "guilds", nil); err == nil {
		t.Fatalf("expected unknown operation error")
	}
	if _, err := f.Fetch(ctx, "achievement", []string{"abc"}); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if _, err := f.Fetch(ctx, "achievement", nil); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := f.Fetch(ctx, "achievements", nil); err == nil {
		t.Fatalf("expected invalid param error")
	}
}

func TestFetchNoAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewAPIClient(testConfig(url), logger.NopLogger{})
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	res, err := NewFetcher(client, nil, logger.NopLogger{}).Fetch(context.Background(), "versions", nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Outcome != "no_answer" || res.Succeeded() {
		t.Fatalf("expected no answer, got %+v", res)
	}
}

func TestRender(t *testing.T) {
	res := FetchResult{Operation: "versions", Outcome: "successful", StatusCode: 200, Data: []string{"v1", "v2"}}

	var buf bytes.Buffer
	if err := Render(&buf, "yaml", res); err != nil {
		t.Fatalf("Render yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "operation: versions") || !strings.Contains(buf.String(), "- v2") {
		t.Fatalf("unexpected yaml output:\n%s", buf.String())
	}

	buf.Reset()
	if err := Render(&buf, "json", res); err != nil {
		t.Fatalf("Render json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded["outcome"] != "successful" {
		t.Fatalf("unexpected json output %s (%v)", buf.String(), err)
	}

	if err := Render(&buf, "xml", res); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestNewAPIClientValidatesKey(t *testing.T) {
	cfg := testConfig("https://api.guildwars2.com")
	cfg.APIKey = "not-a-key"
	if _, err := NewAPIClient(cfg, nil); err == nil {
		t.Fatalf("expected invalid key error")
	}

	cfg.APIKey = "564F181A-F0FC-114A-A55D-3C1DCD45F3767AF3848F-AB29-4EBF-9594-F91E6A75E015"
	cfg.APIKeyPerms = "account, wallet"
	client, err := NewAPIClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	key, ok := client.APIKey()
	if !ok || !key.Allows("wallet") || key.Allows("guilds") {
		t.Fatalf("unexpected key permissions %v", key)
	}

	cfg.APIKeyPerms = "telepathy"
	if _, err := NewAPIClient(cfg, nil); err == nil {
		t.Fatalf("expected unknown permission error")
	}
}

func TestWatcherRunOncePublishesSnapshots(t *testing.T) {
	api := fakeAPI(t)

	var (
		mu     sync.Mutex
		events []publishers.Event
	)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	dir := t.TempDir()
	watchesFile := filepath.Join(dir, "watches.yaml")
	publishersFile := filepath.Join(dir, "publishers.yaml")
	writeTestFile(t, watchesFile, `
watches:
  - id: versions
    path: /
    request_delay_ms: 1
  - id: v2
    path: /v2
    shape: text
    request_delay_ms: 1
`)
	writeTestFile(t, publishersFile, `
publishers:
  - id: sink
    type: http
    http:
      url: `+sink.URL+`
`)

	cfg := testConfig(api.URL)
	cfg.WatchesFile = watchesFile
	cfg.PublishersFile = publishersFile

	w, err := NewWatcher(context.Background(), cfg, logger.NopLogger{})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].WatchID != "versions" || events[0].Snapshot.Body != `["v1","v2"]` {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Snapshot.Body != "v2 endpoints" {
		t.Fatalf("unexpected second event %+v", events[1])
	}
}

func TestNewWatcherRequiresPublishers(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("https://api.guildwars2.com")
	cfg.WatchesFile = filepath.Join(dir, "watches.yaml")
	cfg.PublishersFile = filepath.Join(dir, "publishers.yaml")
	writeTestFile(t, cfg.WatchesFile, "watches:\n  - id: versions\n    path: /\n")
	writeTestFile(t, cfg.PublishersFile, "publishers:\n  - id: off\n    type: http\n    enabled: false\n    http:\n      url: https://example.com\n")

	if _, err := NewWatcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error without enabled publishers")
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

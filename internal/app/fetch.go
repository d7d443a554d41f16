package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/gw2api"
	"github.com/gw2sdk/gw2sdk-go/pkg/sdk"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
	"gopkg.in/yaml.v3"
)

// FetchResult is the printable outcome of a single gw2fetch operation.
type FetchResult struct {
	Operation  string `json:"operation" yaml:"operation"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	StatusCode int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Data       any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the API answered with data.
func (r FetchResult) Succeeded() bool { return r.Outcome == sdk.OutcomeSuccessful.String() }

// Fetcher runs the API operations exposed by gw2fetch.
type Fetcher struct {
	root         *gw2api.RootAPI
	achievements *gw2api.PublicAchievementsAPI
}

// NewFetcher builds the API components on top of client.
func NewFetcher(client gw2api.Fetcher, dec serialization.Deserializer, log logger.Logger) *Fetcher {
	opts := []gw2api.Option{gw2api.WithDeserializer(dec), gw2api.WithLogger(log)}
	return &Fetcher{
		root:         gw2api.NewRootAPI(client, opts...),
		achievements: gw2api.NewPublicAchievementsAPI(client, opts...),
	}
}

type operation func(ctx context.Context, f *Fetcher, args []int64) (FetchResult, error)

var operations = map[string]operation{
	"versions": func(ctx context.Context, f *Fetcher, _ []int64) (FetchResult, error) {
		return collect(ctx, f.root.Versions)
	},
	"v1": func(ctx context.Context, f *Fetcher, _ []int64) (FetchResult, error) {
		return collect(ctx, f.root.Version1Info)
	},
	"v2": func(ctx context.Context, f *Fetcher, _ []int64) (FetchResult, error) {
		return collect(ctx, f.root.Version2Info)
	},
	"achievement-ids": func(ctx context.Context, f *Fetcher, _ []int64) (FetchResult, error) {
		return collect(ctx, f.achievements.AchievementIDs)
	},
	"achievement": func(ctx context.Context, f *Fetcher, args []int64) (FetchResult, error) {
		if len(args) != 1 {
			return FetchResult{}, fmt.Errorf("achievement takes exactly one id, got %d", len(args))
		}
		return collect(ctx, func(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[gw2api.Achievement], error) {
			return f.achievements.Achievement(ctx, args[0], opts...)
		})
	},
	"achievements": func(ctx context.Context, f *Fetcher, args []int64) (FetchResult, error) {
		return collect(ctx, func(ctx context.Context, opts ...sdk.Option) (*sdk.Promise[[]gw2api.Achievement], error) {
			return f.achievements.Achievements(ctx, args, opts...)
		})
	},
}

// Operations lists the supported operation names.
func Operations() []string {
	out := make([]string, 0, len(operations))
	for name := range operations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fetch runs the named operation with its numeric arguments and waits for the outcome.
// API errors and missing answers are results; faults are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, op string, args []string) (FetchResult, error) {
	name := strings.ToLower(strings.TrimSpace(op))
	run, ok := operations[name]
	if !ok {
		return FetchResult{}, fmt.Errorf("unknown operation %q (expected one of %s)", op, strings.Join(Operations(), ", "))
	}

	ids := make([]int64, 0, len(args))
	for _, raw := range args {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return FetchResult{}, fmt.Errorf("invalid id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}

	res, err := run(ctx, f, ids)
	res.Operation = name
	return res, err
}

// collect starts call with outcome handlers installed up front and waits for
// the outcome.
func collect[T any](ctx context.Context, call func(context.Context, ...sdk.Option) (*sdk.Promise[T], error)) (FetchResult, error) {
	var res FetchResult
	p, err := call(ctx, sdk.WithHandlers(sdk.Handlers[T]{
		OnSuccess: func(data T) {
			res = FetchResult{Outcome: sdk.OutcomeSuccessful.String(), StatusCode: 200, Data: data}
		},
		OnError: func(e sdk.ErrorData) {
			res = FetchResult{Outcome: sdk.OutcomeAPIError.String(), StatusCode: e.StatusCode, Error: e.ErrorText()}
		},
		OnNoAnswer: func() {
			res = FetchResult{Outcome: sdk.OutcomeNoAnswer.String(), Error: "the API did not answer"}
		},
	}))
	if err != nil {
		return FetchResult{}, err
	}

	if err := p.JoinContext(ctx); err != nil {
		p.Cancel()
		return FetchResult{}, err
	}
	return res, nil
}

// Render writes res to w as "yaml" or "json".
func Render(w io.Writer, format string, res FetchResult) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected yaml or json)", format)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gw2sdk/gw2sdk-go/internal/app"
	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	exitFault    = 1
	exitNoResult = 2
)

// errNoResult marks an API error or a missing answer, which are reported but not faults.
var errNoResult = errors.New("no successful result")

func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errNoResult):
		os.Exit(exitNoResult)
	default:
		fmt.Fprintf(os.Stderr, "gw2fetch: %v\n", err)
		os.Exit(exitFault)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("gw2fetch", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gw2fetch [flags] <%s> [ids...]\n", strings.Join(app.Operations(), "|"))
		flags.PrintDefaults()
	}
	format := flags.StringP("format", "f", "yaml", "output format (yaml or json)")
	flags.String("api_base_url", config.DefaultAPIBaseURL, "API base url")
	flags.String("api_key", "", "API key sent as a bearer token")
	flags.String("api_key_permissions", "", "comma separated permissions held by the API key")
	flags.String("schema_version", config.DefaultSchemaVersion, "X-Schema-Version header value")
	flags.Int64("timeout_seconds", 5, "per request timeout in seconds")
	flags.Bool("strict_decoding", false, "reject unknown fields in successful responses")
	flags.String("log_level", "warn", "log level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("missing operation")
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.LoadWith(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout carries the result; keep stderr quiet unless asked otherwise
	if !flags.Changed("log_level") && os.Getenv("GW2_LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	log, err := logger.InitTo(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := app.NewAPIClient(cfg, log)
	if err != nil {
		return err
	}

	fetcher := app.NewFetcher(client, app.DeserializerFor(cfg), log)
	res, err := fetcher.Fetch(ctx, flags.Arg(0), flags.Args()[1:])
	if err != nil {
		return err
	}
	if err := app.Render(os.Stdout, *format, res); err != nil {
		return err
	}
	if !res.Succeeded() {
		return errNoResult
	}
	return nil
}

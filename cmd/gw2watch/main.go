package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gw2sdk/gw2sdk-go/internal/app"
	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gw2watch start failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("gw2watch", pflag.ContinueOnError)
	once := flags.Bool("once", false, "run a single poll pass and exit")
	flags.String("watches_file", "./configs/watches.yaml", "watch catalogue (yaml or json)")
	flags.String("publishers_file", "./configs/publishers.yaml", "publisher registry (yaml or json)")
	flags.Int64("poll_interval", 300, "seconds between poll passes")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.LoadWith(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("gw2watch starting", "config", map[string]any{
		"app_env":         cfg.Env,
		"api_base_url":    cfg.APIBaseURL,
		"watches_file":    cfg.WatchesFile,
		"publishers_file": cfg.PublishersFile,
		"storage_type":    cfg.StorageType,
		"poll_interval":   cfg.PollInterval.String(),
		"once":            *once,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := app.NewWatcher(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize watcher", "error", err)
		return err
	}

	if *once {
		if err := watcher.RunOnce(ctx); err != nil {
			return fmt.Errorf("watcher poll: %w", err)
		}
		return nil
	}
	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watcher run: %w", err)
	}
	return nil
}

package app

import (
	"fmt"
	"strings"

	"github.com/gw2sdk/gw2sdk-go/internal/config"
	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/auth"
	"github.com/gw2sdk/gw2sdk-go/pkg/httpclient"
	"github.com/gw2sdk/gw2sdk-go/pkg/serialization"
)

// NewAPIClient builds the API client described by cfg.
func NewAPIClient(cfg *config.Config, log logger.Logger) (*httpclient.APIClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	key, err := apiKeyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := httpclient.NewAPIClient(httpclient.Options{
		Client:        httpclient.NewRestyClient(cfg.Timeout),
		BaseURL:       cfg.APIBaseURL,
		APIKey:        key,
		SchemaVersion: cfg.SchemaVersion,
		Timeout:       cfg.Timeout,
		Logger:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	masked := ""
	if key != nil {
		masked = key.String()
	}
	log.InfoObj("api client initialized", "api_client", map[string]any{
		"base_url":        cfg.APIBaseURL,
		"schema_version":  cfg.SchemaVersion,
		"timeout_seconds": cfg.TimeoutSeconds,
		"api_key":         masked,
	})
	return client, nil
}

func apiKeyFromConfig(cfg *config.Config) (*auth.APIKey, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	var perms []auth.Permission
	for _, raw := range strings.Split(cfg.APIKeyPerms, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		p, err := auth.ParsePermission(raw)
		if err != nil {
			return nil, fmt.Errorf("api_key_permissions: %w", err)
		}
		perms = append(perms, p)
	}

	key, err := auth.NewAPIKey(cfg.APIKey, perms...)
	if err != nil {
		return nil, fmt.Errorf("api key: %w", err)
	}
	return key, nil
}

// DeserializerFor returns the JSON deserializer selected by cfg.
func DeserializerFor(cfg *config.Config) serialization.Deserializer {
	return serialization.JSONDeserializer{Strict: cfg.StrictDecoding}
}

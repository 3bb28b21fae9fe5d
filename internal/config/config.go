package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	normalizeAppConfig(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Curation: CurationConfig{
			MinSources:        defaultMinSources,
			MaxBatchItems:     defaultMaxBatchItems,
			MaxSourcesPerItem: defaultMaxSourcesPerItem,
			ItemDelay:         defaultItemDelay,
			FailureDelay:      defaultFailureDelay,
			RunDeadline:       defaultRunDeadline,
			ProviderTimeout:   defaultProviderTimeout,
		},
	}
	return cfg
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file, which keeps credentials out of checked-in YAML.
func applyEnvOverrides(cfg *AppConfig) {
	set := func(target *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
	set(&cfg.Providers.Serper.APIKey, "SERPER_API_KEY")
	set(&cfg.Providers.GoogleSearch.APIKey, "GOOGLE_SEARCH_API_KEY")
	set(&cfg.Providers.GoogleSearch.EngineID, "GOOGLE_SEARCH_ENGINE_ID")
	set(&cfg.Providers.YouTube.APIKey, "YOUTUBE_API_KEY")
	set(&cfg.Providers.Rakuten.ApplicationID, "RAKUTEN_APPLICATION_ID")
	set(&cfg.Providers.Rakuten.AffiliateID, "RAKUTEN_AFFILIATE_ID")
	set(&cfg.Curation.BatchSecret, "BATCH_SECRET")
}

func normalizeAppConfig(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	if strings.TrimSpace(cfg.DSN) == "" {
		cfg.DSN = cfg.Database.DSNValue()
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = cfg.Redis.URLValue()
	} else {
		cfg.RedisURL = normalizeRedisRawURL(cfg.RedisURL)
	}

	cur := &cfg.Curation
	if cur.MinSources < 1 {
		cur.MinSources = defaultMinSources
	}
	if cur.MaxBatchItems < 1 {
		cur.MaxBatchItems = defaultMaxBatchItems
	}
	if cur.MaxSourcesPerItem < 1 {
		cur.MaxSourcesPerItem = defaultMaxSourcesPerItem
	}
	if cur.ItemDelay <= 0 {
		cur.ItemDelay = defaultItemDelay
	}
	if cur.FailureDelay <= 0 {
		cur.FailureDelay = defaultFailureDelay
	}
	if cur.RunDeadline <= 0 {
		cur.RunDeadline = defaultRunDeadline
	}
	if cur.ProviderTimeout <= 0 {
		cur.ProviderTimeout = defaultProviderTimeout
	}
}

// ErrMissingCredentials aborts startup when no generative provider can be
// used. Search provider credentials are optional, those collectors are
// just skipped.
var ErrMissingCredentials = errors.New("no enabled AI provider with an api_key configured")

func (c *AppConfig) Validate() error {
	for _, p := range c.AI.Providers {
		if p.Enabled && strings.TrimSpace(p.APIKey) != "" {
			return nil
		}
	}
	return ErrMissingCredentials
}

// ResolveSynthesisModel returns the provider and model to use for review
// synthesis. The explicit assignment wins; otherwise the first enabled
// provider and its default model are used.
func (c *AppConfig) ResolveSynthesisModel() (*AIProvider, string, error) {
	if a := c.AI.SynthesisModel; a != nil && a.ProviderID != "" {
		for i := range c.AI.Providers {
			p := &c.AI.Providers[i]
			if p.ID == a.ProviderID && p.Enabled {
				model := a.Model
				if model == "" {
					model = p.DefaultModel
				}
				return p, model, nil
			}
		}
		return nil, "", fmt.Errorf("ai: assigned provider %q not found or disabled", a.ProviderID)
	}
	for i := range c.AI.Providers {
		p := &c.AI.Providers[i]
		if p.Enabled && strings.TrimSpace(p.APIKey) != "" {
			return p, p.DefaultModel, nil
		}
	}
	return nil, "", fmt.Errorf("ai: no enabled provider available")
}

func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

func (c *AppConfig) IsDev() bool { return !c.IsProduction() }

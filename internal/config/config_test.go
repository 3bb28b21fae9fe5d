package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfigYAML = `port: 9000
env: production
database:
  host: db.internal
  name: runreview
redis:
  host: cache.internal
ai:
  providers:
    - id: anthropic-main
      name: Anthropic
      type: Anthropic
      api_key: sk-test
      default_model: claude-haiku-4-5-20251001
      enabled: true
    - id: openai-backup
      name: OpenAI
      type: OpenAI
      api_key: sk-other
      default_model: gpt-4o-mini
      enabled: true
curation:
  min_sources: 3
  batch_secret: file-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 || !cfg.IsProduction() {
		t.Errorf("port/env = %d/%q", cfg.Port, cfg.Env)
	}
	if cfg.Curation.MinSources != 3 {
		t.Errorf("MinSources = %d, want file value 3", cfg.Curation.MinSources)
	}
	if cfg.Curation.MaxBatchItems != defaultMaxBatchItems {
		t.Errorf("MaxBatchItems = %d, want default", cfg.Curation.MaxBatchItems)
	}
	if cfg.Curation.ItemDelay != 5*time.Second {
		t.Errorf("ItemDelay = %v, want default 5s", cfg.Curation.ItemDelay)
	}
	if cfg.DSN == "" {
		t.Error("DSN not derived from database block")
	}
	if cfg.RedisURL == "" {
		t.Error("RedisURL not derived from redis block")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "env-serper")
	t.Setenv("BATCH_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Providers.Serper.APIKey != "env-serper" {
		t.Errorf("Serper.APIKey = %q", cfg.Providers.Serper.APIKey)
	}
	if cfg.Curation.BatchSecret != "env-secret" {
		t.Errorf("BatchSecret = %q, env must win over the file", cfg.Curation.BatchSecret)
	}
}

func TestLoadRejectsMissingAICredentials(t *testing.T) {
	yaml := `port: 8080
ai:
  providers:
    - id: anthropic-main
      type: Anthropic
      api_key: ""
      enabled: true
`
	_, err := Load(writeConfig(t, yaml))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, testConfigYAML+"typo_field: true\n"))
	if err == nil || errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want a parse failure on the unknown field", err)
	}
}

func TestResolveSynthesisModel(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p, model, err := cfg.ResolveSynthesisModel()
	if err != nil {
		t.Fatalf("ResolveSynthesisModel() error = %v", err)
	}
	if p.ID != "anthropic-main" || model != "claude-haiku-4-5-20251001" {
		t.Errorf("resolved %q/%q, want first enabled provider and its default", p.ID, model)
	}

	cfg.AI.SynthesisModel = &AIModelAssignment{ProviderID: "openai-backup", Model: "gpt-4o"}
	p, model, err = cfg.ResolveSynthesisModel()
	if err != nil {
		t.Fatalf("ResolveSynthesisModel() assigned error = %v", err)
	}
	if p.ID != "openai-backup" || model != "gpt-4o" {
		t.Errorf("resolved %q/%q, assignment must win", p.ID, model)
	}

	cfg.AI.SynthesisModel = &AIModelAssignment{ProviderID: "missing"}
	if _, _, err := cfg.ResolveSynthesisModel(); err == nil {
		t.Error("unknown assigned provider must fail")
	}
}

package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port     int                   `yaml:"port"`
	DSN      string                `yaml:"dsn"` // MySQL DSN
	RedisURL string                `yaml:"redis_url"`
	Database DatabaseRuntimeConfig `yaml:"database"`
	Redis    RedisRuntimeConfig    `yaml:"redis"`
	Env      string                `yaml:"env"` // "development" | "production"

	AllowedOrigins []string        `yaml:"allowed_origins"`
	Providers      ProvidersConfig `yaml:"providers"`
	AI             AIConfig        `yaml:"ai"`
	Curation       CurationConfig  `yaml:"curation"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

// ProvidersConfig carries credentials for the external source providers.
// A provider with empty credentials is simply skipped during collection.
type ProvidersConfig struct {
	Serper       SerperConfig       `yaml:"serper"`
	GoogleSearch GoogleSearchConfig `yaml:"google_search"`
	YouTube      YouTubeConfig      `yaml:"youtube"`
	Rakuten      RakutenConfig      `yaml:"rakuten"`
}

type SerperConfig struct {
	APIKey string `yaml:"api_key"`
}

type GoogleSearchConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key"`
}

type RakutenConfig struct {
	ApplicationID string `yaml:"application_id"`
	AffiliateID   string `yaml:"affiliate_id"`
}

type AIConfig struct {
	Providers      []AIProvider       `yaml:"providers"`
	SynthesisModel *AIModelAssignment `yaml:"synthesis_model,omitempty"`
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// CurationConfig tunes the collection and batch pipeline.
type CurationConfig struct {
	MinSources        int           `yaml:"min_sources"`
	MaxBatchItems     int           `yaml:"max_batch_items"`
	MaxSourcesPerItem int           `yaml:"max_sources_per_item"`
	ItemDelay         time.Duration `yaml:"item_delay"`
	FailureDelay      time.Duration `yaml:"failure_delay"`
	RunDeadline       time.Duration `yaml:"run_deadline"`
	ProviderTimeout   time.Duration `yaml:"provider_timeout"`
	BatchSecret       string        `yaml:"batch_secret"`
}

package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333

	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "runreview"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0

	defaultMinSources        = 1
	defaultMaxBatchItems     = 10
	defaultMaxSourcesPerItem = 20
	defaultItemDelay         = 5 * time.Second
	defaultFailureDelay      = 2 * time.Second
	defaultRunDeadline       = 5 * time.Minute
	defaultProviderTimeout   = 15 * time.Second
)

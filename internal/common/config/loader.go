// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load assembles the effective configuration in layers: configs/config.yaml,
// an optional configs/config.<environment>.yaml overlay, ${VAR} placeholder
// expansion, and finally plain environment variables for the credentials
// that never belong in a checked-in file.
func Load() (*Config, error) {
	loadDotenv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read base config: %w", err)
		}
	}

	// The overlay is optional; development boxes usually run on the base
	// file alone.
	viper.SetConfigName("config." + environment())
	_ = viper.MergeInConfig()

	expandPlaceholders(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func environment() string {
	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

// loadDotenv looks for a .env file near the working directory and at the
// module root. Workers run from the repo root in development but from
// package directories under `go test`, so a few relative locations are
// tried before falling back to the process environment.
func loadDotenv() {
	candidates := []string{".env", "../.env", "../../.env", "../../../.env"}
	if root := moduleRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("loaded environment from %s\n", path)
			return
		}
	}
}

// moduleRoot walks up from the working directory until it finds go.mod.
func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandPlaceholders rewrites string values of the form ${VAR} with the
// matching environment variable. Viper's AutomaticEnv only covers keys read
// through Get, not values written inside the YAML, so expansion happens on
// the loaded tree. Strings with a bare mid-word dollar sign are left alone.
func expandPlaceholders(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if !strings.Contains(s, "${") && !strings.HasPrefix(s, "$") {
			continue
		}
		if expanded := os.ExpandEnv(s); expanded != s && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

// applyEnvFallbacks fills the credential fields that operators commonly hand
// over as plain environment variables rather than through the YAML tree.
func applyEnvFallbacks(cfg *Config) {
	fromEnv(&cfg.Integrations.Zoho.APIKey, "ZOHO_CRM_API_KEY")
	fromEnv(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")
	fromEnv(&cfg.Integrations.AWS.Region, "AWS_REGION")
	fromEnv(&cfg.Database.Postgres.User, "DB_USER")
	fromEnv(&cfg.Database.Postgres.Password, "DB_PASSWORD")

	// The notification sender shares the integration region unless set apart.
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = cfg.Integrations.AWS.Region
	}
}

func fromEnv(target *string, key string) {
	if *target != "" {
		return
	}
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

// defaultWorker fills partially configured workers and answers for task
// types the YAML does not mention at all.
var defaultWorker = WorkerConfig{
	Enabled:       true,
	MaxJobsActive: 5,
	Timeout:       30000,
	MaxRetries:    3,
}

func applyDefaults(cfg *Config) {
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Scoring weights and capacity limits stay zero on purpose: the
	// distribution engine carries its own defaults and zero means "not set".
	if cfg.Distribution.PoolCacheTTLSeconds == 0 {
		cfg.Distribution.PoolCacheTTLSeconds = 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for name, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = defaultWorker.MaxJobsActive
		}
		if w.Timeout == 0 {
			w.Timeout = defaultWorker.Timeout
		}
		if w.MaxRetries == 0 {
			w.MaxRetries = defaultWorker.MaxRetries
		}
		cfg.Workers[name] = w
	}
}

// Validate reports the first missing setting the workers cannot start
// without. Everything else has a workable default.
func (cfg *Config) Validate() error {
	required := []struct {
		ok  bool
		key string
	}{
		{cfg.Camunda.BrokerAddress != "", "camunda.broker_address"},
		{cfg.Database.Postgres.Host != "", "database.postgres.host"},
		{cfg.Database.Postgres.Database != "", "database.postgres.database"},
		{cfg.Database.Postgres.User != "", "database.postgres.user"},
		{cfg.Database.Elasticsearch.GetURL() != "", "database.elasticsearch.addresses"},
		{cfg.Database.Redis.Address != "", "database.redis.address"},
	}

	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	return nil
}

// GetDuration converts a millisecond count from the YAML into a Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the configured settings for a task type, or the
// stock defaults when the YAML has no entry for it.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if w, ok := cfg.Workers[workerName]; ok {
		return w
	}
	return defaultWorker
}

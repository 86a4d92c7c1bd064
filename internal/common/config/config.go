// internal/common/config/config.go
package config

import "fmt"

// Config mirrors the layout of configs/config.yaml. Everything the worker
// manager and the individual workers read at startup hangs off this struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Distribution  DistributionConfig      `mapstructure:"distribution"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// CamundaConfig covers the gateway connection shared by every job stream.
// Timeouts are in milliseconds, matching how the YAML spells them.
type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN builds the keyword/value connection string lib/pq expects.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig accepts either an address list or a single URL;
// deployments that front the cluster with one load balancer tend to set
// only the URL.
type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"`
}

// GetURL resolves the endpoint, preferring the explicit URL over the list.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig is the per-task-type knob set under the workers: map.
// Timeout is in milliseconds; MaxRetries feeds the job fail commands.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`
	MaxRetries    int  `mapstructure:"max_retries"`
}

// DistributionConfig holds the scoring defaults for the distribution engine.
// Zero values mean "use the engine's built-in default"; the distribute-lead
// worker translates whatever is set here into engine overrides at startup.
type DistributionConfig struct {
	Weights struct {
		Territory   float64 `mapstructure:"territory"`
		Capacity    float64 `mapstructure:"capacity"`
		Expertise   float64 `mapstructure:"expertise"`
		Performance float64 `mapstructure:"performance"`
		Fairness    float64 `mapstructure:"fairness"`
	} `mapstructure:"weights"`

	MaxLeadsPerUser         int `mapstructure:"max_leads_per_user"`
	FairnessSaturationHours int `mapstructure:"fairness_saturation_hours"`

	// PoolCacheTTLSeconds bounds how stale a cached candidate pool may be.
	PoolCacheTTLSeconds int `mapstructure:"pool_cache_ttl_seconds"`
}

// HasWeights reports whether any weight was configured. An all-zero weight
// block cannot be a deliberate setting since weights must sum to 1.0.
func (d DistributionConfig) HasWeights() bool {
	w := d.Weights
	return w.Territory != 0 || w.Capacity != 0 || w.Expertise != 0 ||
		w.Performance != 0 || w.Fairness != 0
}

// IntegrationConfig holds settings for CRM and other external services.
type IntegrationConfig struct {
	Zoho struct {
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// NotificationConfig holds settings for the notify-assignment worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled           bool   `mapstructure:"enabled"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

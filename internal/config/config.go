package config

import (
	"fmt"
	"time"

	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	AI        AIConfig        `mapstructure:"ai"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	Debug        bool   `mapstructure:"debug"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// SimulatorConfig drives the device/event simulation loop.
type SimulatorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval int    `mapstructure:"interval"` // tick period in seconds
	Devices  int    `mapstructure:"devices"`  // target pool size
	Scenario string `mapstructure:"scenario"`

	// Per-stage enable flags.
	RiskScoreUpdates      bool `mapstructure:"risk_score_updates"`
	ThreatDetection       bool `mapstructure:"threat_detection"`
	PolicyRecommendations bool `mapstructure:"policy_recommendations"`

	// Event tuning.
	SecurityIncidentProbability float64 `mapstructure:"security_incident_probability"`
	NetworkEventProbability     float64 `mapstructure:"network_event_probability"`
	MaxEventsPerCycle           int     `mapstructure:"max_events_per_cycle"`

	// Per-scenario device-type distribution weights. Keys are scenario
	// names; missing scenarios fall back to the office table.
	Distributions map[string]DeviceDistribution `mapstructure:"distributions"`
}

// DeviceDistribution is the weighted device-type table for one scenario.
// Weights are percentages and should sum to 100.
type DeviceDistribution struct {
	Laptop int `mapstructure:"laptop"`
	Mobile int `mapstructure:"mobile"`
	Tablet int `mapstructure:"tablet"`
	Server int `mapstructure:"server"`
	IoT    int `mapstructure:"iot"`
	Other  int `mapstructure:"other"`
}

// PipelineConfig bounds the analysis pipeline's intake and concurrency.
type PipelineConfig struct {
	QueueSize int `mapstructure:"queue_size"`
	Workers   int `mapstructure:"workers"`
}

// AIConfig selects and configures the analysis strategies.
type AIConfig struct {
	Provider string `mapstructure:"provider"` // "heuristic" or "llm"
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Timeout  int    `mapstructure:"timeout"` // request timeout in seconds
}

// KafkaConfig configures the optional security-event publisher.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// TickInterval returns the simulator period as a duration.
func (c *SimulatorConfig) TickInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// DistributionFor returns the device-type table for a scenario, falling back
// to the office table for unrecognized names.
func (c *SimulatorConfig) DistributionFor(scenario string) DeviceDistribution {
	if d, ok := c.Distributions[scenario]; ok {
		return d
	}
	return c.Distributions[string(constants.ScenarioOffice)]
}

// Validate checks all configuration values for range errors. The service
// refuses to start on any violation.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidConfig(fmt.Sprintf("server port out of range: %d", c.Server.Port))
	}
	if c.Simulator.TickInterval() < constants.MinTickInterval {
		return errors.ErrInvalidConfig(fmt.Sprintf(
			"simulator interval must be at least %s, got %ds", constants.MinTickInterval, c.Simulator.Interval))
	}
	if c.Simulator.Devices < constants.MinDeviceCount || c.Simulator.Devices > constants.MaxDeviceCount {
		return errors.ErrInvalidConfig(fmt.Sprintf(
			"device count must be between %d and %d, got %d",
			constants.MinDeviceCount, constants.MaxDeviceCount, c.Simulator.Devices))
	}
	if err := validateProbability("security_incident_probability", c.Simulator.SecurityIncidentProbability); err != nil {
		return err
	}
	if err := validateProbability("network_event_probability", c.Simulator.NetworkEventProbability); err != nil {
		return err
	}
	if c.Simulator.MaxEventsPerCycle < 1 {
		return errors.ErrInvalidConfig("max_events_per_cycle must be at least 1")
	}
	if c.Pipeline.QueueSize < 1 {
		return errors.ErrInvalidConfig("pipeline queue_size must be at least 1")
	}
	if c.Pipeline.Workers < 1 {
		return errors.ErrInvalidConfig("pipeline workers must be at least 1")
	}
	switch constants.AIProvider(c.AI.Provider) {
	case constants.ProviderHeuristic, constants.ProviderLLM:
	default:
		return errors.ErrInvalidConfig(fmt.Sprintf("unknown ai provider: %q", c.AI.Provider))
	}
	if constants.AIProvider(c.AI.Provider) == constants.ProviderLLM && c.AI.BaseURL == "" {
		return errors.ErrInvalidConfig("ai.base_url is required for the llm provider")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.ErrInvalidConfig("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func validateProbability(name string, v float64) error {
	if v < 0.0 || v > 1.0 {
		return errors.ErrInvalidConfig(fmt.Sprintf("%s must be between 0.0 and 1.0, got %v", name, v))
	}
	return nil
}

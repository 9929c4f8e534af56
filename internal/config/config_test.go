package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Log: LogConfig{Level: "info"},
		Simulator: SimulatorConfig{
			Enabled:                     true,
			Interval:                    30,
			Devices:                     50,
			Scenario:                    string(constants.ScenarioOffice),
			SecurityIncidentProbability: 0.3,
			NetworkEventProbability:     0.1,
			MaxEventsPerCycle:           10,
			Distributions: map[string]DeviceDistribution{
				string(constants.ScenarioOffice): {Laptop: 40, Mobile: 20, Tablet: 15, Server: 10, IoT: 10, Other: 5},
			},
		},
		Pipeline: PipelineConfig{QueueSize: 256, Workers: 8},
		AI:       AIConfig{Provider: string(constants.ProviderHeuristic)},
		Kafka:    KafkaConfig{Enabled: false},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"interval too short", func(c *Config) { c.Simulator.Interval = 0 }},
		{"too few devices", func(c *Config) { c.Simulator.Devices = 0 }},
		{"too many devices", func(c *Config) { c.Simulator.Devices = constants.MaxDeviceCount + 1 }},
		{"negative incident probability", func(c *Config) { c.Simulator.SecurityIncidentProbability = -0.1 }},
		{"event probability above one", func(c *Config) { c.Simulator.NetworkEventProbability = 1.2 }},
		{"zero events per cycle", func(c *Config) { c.Simulator.MaxEventsPerCycle = 0 }},
		{"zero queue size", func(c *Config) { c.Pipeline.QueueSize = 0 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"unknown ai provider", func(c *Config) { c.AI.Provider = "oracle" }},
		{"llm without base url", func(c *Config) { c.AI.Provider = string(constants.ProviderLLM); c.AI.BaseURL = "" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			appErr := errors.AsAppError(err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, appErr.Code)
		})
	}
}

func TestValidateAcceptsLLMProviderWithBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = string(constants.ProviderLLM)
	cfg.AI.BaseURL = "http://localhost:11434/v1"
	require.NoError(t, cfg.Validate())
}

func TestTickInterval(t *testing.T) {
	cfg := SimulatorConfig{Interval: 45}
	assert.Equal(t, 45*time.Second, cfg.TickInterval())
}

func TestDistributionForFallsBackToOffice(t *testing.T) {
	cfg := validConfig().Simulator

	office := cfg.DistributionFor(string(constants.ScenarioOffice))
	assert.Equal(t, 40, office.Laptop)

	unknown := cfg.DistributionFor("space-station")
	assert.Equal(t, office, unknown)
}

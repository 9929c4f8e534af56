package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
)

// Load reads configuration from config.yaml (searched in ./configs, /etc/naps
// and the working directory), applies NAPS_-prefixed environment overrides and
// validates the result. A missing config file is not an error; defaults and
// environment variables are enough to run.
func Load() (*Config, error) {
	v := viper.GetViper()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/naps")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NAPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig("failed to read config file").WithCause(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig("failed to parse configuration").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch re-reads and re-validates the configuration whenever the config file
// changes on disk. Invalid edits are reported to onError and do not replace
// the running configuration.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := viper.Unmarshal(&cfg); err != nil {
			onError(errors.ErrInvalidConfig("failed to parse configuration on reload").WithCause(err))
			return
		}
		if err := cfg.Validate(); err != nil {
			onError(err)
			return
		}
		onChange(&cfg)
	})
	viper.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.debug", false)

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "naps")

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.interval", int(constants.DefaultTickInterval.Seconds()))
	v.SetDefault("simulator.devices", constants.DefaultDeviceCount)
	v.SetDefault("simulator.scenario", string(constants.DefaultScenario))
	v.SetDefault("simulator.risk_score_updates", true)
	v.SetDefault("simulator.threat_detection", true)
	v.SetDefault("simulator.policy_recommendations", true)
	v.SetDefault("simulator.security_incident_probability", 0.3)
	v.SetDefault("simulator.network_event_probability", 0.1)
	v.SetDefault("simulator.max_events_per_cycle", 10)
	v.SetDefault("simulator.distributions", defaultDistributions())

	v.SetDefault("pipeline.queue_size", constants.DefaultPipelineQueueSize)
	v.SetDefault("pipeline.workers", constants.DefaultPipelineWorkers)

	v.SetDefault("ai.provider", string(constants.ProviderHeuristic))
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "naps.security-events")
}

func defaultDistributions() map[string]map[string]int {
	return map[string]map[string]int{
		string(constants.ScenarioOffice):        {"laptop": 40, "mobile": 20, "tablet": 15, "server": 10, "iot": 10, "other": 5},
		string(constants.ScenarioCampus):        {"laptop": 35, "mobile": 25, "tablet": 20, "server": 10, "iot": 5, "other": 5},
		string(constants.ScenarioDatacenter):    {"laptop": 10, "mobile": 5, "tablet": 5, "server": 70, "iot": 5, "other": 5},
		string(constants.ScenarioHealthcare):    {"laptop": 30, "mobile": 15, "tablet": 10, "server": 15, "iot": 20, "other": 10},
		string(constants.ScenarioManufacturing): {"laptop": 20, "mobile": 10, "tablet": 5, "server": 20, "iot": 35, "other": 10},
		string(constants.ScenarioRetail):        {"laptop": 25, "mobile": 20, "tablet": 15, "server": 10, "iot": 20, "other": 10},
	}
}

package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName      string `mapstructure:"service_name"`
	OTLPEndpoint     string `mapstructure:"otlp_endpoint"`
	TelemetryEnabled bool   `mapstructure:"telemetry_enabled"`
	LogLevel         string `mapstructure:"log_level"`
	LogPretty        bool   `mapstructure:"log_pretty"`
	MetricsTextfile  string `mapstructure:"metrics_textfile"`
}

// Environment variable names, keyed by config field.
var envBindings = map[string]string{
	"service_name":      "OTEL_SERVICE_NAME",
	"otlp_endpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
	"telemetry_enabled": "PARKING_LOT_TELEMETRY_ENABLED",
	"log_level":         "LOG_LEVEL",
	"log_pretty":        "LOG_PRETTY",
	"metrics_textfile":  "METRICS_TEXTFILE",
	"sdk_disabled":      "OTEL_SDK_DISABLED",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "parking-lot-service")
	v.SetDefault("otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry_enabled", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("metrics_textfile", "")
	v.SetDefault("sdk_disabled", false)
}

// Load reads configuration from defaults, the environment and, when
// configFile is non-empty, a config file. The environment wins over the
// file. OTEL_SDK_DISABLED=true turns telemetry off regardless of the rest.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if v.GetBool("sdk_disabled") {
		cfg.TelemetryEnabled = false
	}

	return &cfg, nil
}

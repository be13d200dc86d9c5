package checkins_config

import (
	"strings"

	"github.com/NordCoder/checkins/internal/foursquare"
	"github.com/spf13/viper"
)

// Load reads the yaml file at path (optional) and overlays env vars,
// e.g. API_TOKEN or KAFKA_TOPIC.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("app.name", "checkins")
	v.SetDefault("app.env", "dev")

	v.SetDefault("api.base_url", foursquare.DefaultBaseURL)
	v.SetDefault("api.token", "")
	v.SetDefault("api.version", foursquare.DefaultVersion)
	v.SetDefault("api.locale", "en")
	v.SetDefault("api.user_agent", "checkins/1.0")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.insecure_skip_verify", false)
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("api.retry_base", "200ms")
	v.SetDefault("api.retry_max", "2s")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "checkins")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "checkins.recent")

	v.SetDefault("relay.tick", "1m")
	v.SetDefault("relay.batch_limit", 100)
	v.SetDefault("relay.lookback", "1h")
	v.SetDefault("relay.metrics_addr", ":8084")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.API.Token == "" {
		return nil, ErrNoToken
	}
	return &cfg, nil
}

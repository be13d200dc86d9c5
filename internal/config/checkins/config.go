package checkins_config

import (
	"time"

	"github.com/NordCoder/checkins/internal/foursquare"
	"github.com/NordCoder/checkins/internal/obs"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type API struct {
	BaseURL            string        `mapstructure:"base_url"`
	Token              string        `mapstructure:"token"`
	Version            string        `mapstructure:"version"`
	Locale             string        `mapstructure:"locale"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	RetryAttempts      int           `mapstructure:"retry_attempts"`
	RetryBase          time.Duration `mapstructure:"retry_base"`
	RetryMax           time.Duration `mapstructure:"retry_max"`
}

func (a *API) AsClientConfig() foursquare.Config {
	return foursquare.Config{
		BaseURL:            a.BaseURL,
		Token:              a.Token,
		Version:            a.Version,
		Locale:             a.Locale,
		UserAgent:          a.UserAgent,
		Timeout:            a.Timeout,
		InsecureSkipVerify: a.InsecureSkipVerify,
		Retry: foursquare.RetryConfig{
			Attempts: a.RetryAttempts,
			Base:     a.RetryBase,
			Max:      a.RetryMax,
		},
	}
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (c *Config) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:         c.OTEL.Enable,
		Endpoint:       c.OTEL.OTLPEndpoint,
		ServiceName:    c.OTEL.ServiceName,
		ServiceVersion: c.App.Version,
		SampleRatio:    c.OTEL.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Relay struct {
	Tick        time.Duration `mapstructure:"tick"`
	BatchLimit  int           `mapstructure:"batch_limit"`
	Latitude    *float64      `mapstructure:"latitude"`
	Longitude   *float64      `mapstructure:"longitude"`
	Lookback    time.Duration `mapstructure:"lookback"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type Config struct {
	App   App      `mapstructure:"app"`
	API   API      `mapstructure:"api"`
	OTEL  OTEL     `mapstructure:"otel"`
	Log   Log      `mapstructure:"log"`
	Kafka KafkaOut `mapstructure:"kafka"`
	Relay Relay    `mapstructure:"relay"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const ErrNoToken = ErrConfig("api.token is required (API_TOKEN)")

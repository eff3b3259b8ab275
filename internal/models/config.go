package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	CartServiceURL     string        `mapstructure:"cart_service_url"`
	EstimateServiceURL string        `mapstructure:"estimate_service_url"`
	OrderServiceURL    string        `mapstructure:"order_service_url"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`

	// Selection overlay storage and broadcast
	RedisEnabled  bool   `mapstructure:"redis_enabled"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	StorageScope  string `mapstructure:"storage_scope"`

	// Telemetry output
	TelemetrySink   string `mapstructure:"telemetry_sink"` // console, file, kafka or s3
	TelemetryFolder string `mapstructure:"telemetry_folder"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	S3Bucket        string `mapstructure:"s3_bucket"`
	S3Region        string `mapstructure:"s3_region"`

	// Receipt persistence (optional)
	PostgresEnabled bool   `mapstructure:"postgres_enabled"`
	DatabaseURL     string `mapstructure:"database_url"`

	// Checkout defaults
	DefaultDeliveryType string  `mapstructure:"default_delivery_type"`
	DefaultLat          float64 `mapstructure:"default_latitude"`
	DefaultLon          float64 `mapstructure:"default_longitude"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("request_timeout", "15s")
	viper.SetDefault("storage_scope", "cart")
	viper.SetDefault("telemetry_sink", "console")
	viper.SetDefault("default_delivery_type", "courier")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}

// Package config loads application configuration from file or
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/edgeflare/treeconf/pkg/mqtt"
)

// Version is set at build time.
var Version = "dev"

// Config holds application-wide configuration
type Config struct {
	// Prefix is the device topic prefix, e.g. "dt/sinara/stabilizer".
	Prefix string `mapstructure:"prefix"`

	// Codec selects the leaf wire format: "json" (default) or "cbor".
	Codec string `mapstructure:"codec"`

	// RepublishDelay is the settle time between subscribing and the
	// republish pass.
	RepublishDelay time.Duration `mapstructure:"republishDelay"`

	MQTT    mqtt.Config   `mapstructure:"mqtt"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func Default() Config {
	return Config{
		Codec: "json",
		MQTT: mqtt.Config{
			Brokers: []string{"tcp://127.0.0.1:1883"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9100",
		},
	}
}

// Load reads config from file or environment
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("treeconf")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TREECONF")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

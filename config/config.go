// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	APIBaseURL  string        `mapstructure:"API_BASE_URL"`
	RedisURL    string        `mapstructure:"REDIS_URL"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
	StubPort    string        `mapstructure:"STUB_PORT"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() *Config {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &notFoundErr) {
			log.Println("Config file not found; using environment variables and defaults")
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	}

	// Set default values
	viper.SetDefault("API_BASE_URL", "http://localhost:8081/api")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("HTTP_TIMEOUT", 10*time.Second)
	viper.SetDefault("STUB_PORT", "8081")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode config into struct, %v", err)
	}

	return &config
}

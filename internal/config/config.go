// Package config provides viper-backed accessors for tubmerge settings.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Keys understood in the config file and environment.
const (
	// KeyBrakeDefault is the brake value substituted for legacy records.
	KeyBrakeDefault = "brake-default"

	// KeyLogLevel is the minimum log level.
	KeyLogLevel = "log-level"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// LogLevel returns the configured log level name, if any.
func LogLevel() string {
	return GetString(KeyLogLevel)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rdsinfo/internal/logging"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "RDSINFO"

// flagNames maps configuration keys to the flags that can set them
var flagNames = map[string]string{
	KeyLogLevel:  "log-level",
	KeyLogFormat: "log-format",
}

// parameterSource tracks where each parameter value came from
type parameterSource struct {
	Key    string
	Value  interface{}
	Source string
}

// envKey returns the environment variable consulted for key
func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// getParameterSource determines where a parameter value came from (config file, env var, flag, or default)
func getParameterSource(key string, cmd *cobra.Command) parameterSource {
	value := viper.Get(key)

	if flagName, ok := flagNames[key]; ok && cmd != nil {
		if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
			return parameterSource{key, value, "command line flag"}
		}

		// Walk up the command chain checking persistent flags
		for current := cmd; current != nil; current = current.Parent() {
			if f := current.PersistentFlags().Lookup(flagName); f != nil && f.Changed {
				return parameterSource{key, value, "command line flag"}
			}
		}
	}

	if _, exists := os.LookupEnv(envKey(key)); exists {
		return parameterSource{key, value, "environment variable"}
	}

	if viper.InConfig(key) {
		return parameterSource{key, value, "config file"}
	}

	return parameterSource{key, value, "default value"}
}

// LogConfigurationSources logs the source of each configuration parameter
func LogConfigurationSources(cmd *cobra.Command) {
	logging.Debug("Configuration parameter sources:", nil)

	for _, key := range viper.AllKeys() {
		source := getParameterSource(key, cmd)
		logging.Debug(fmt.Sprintf("  %s = %v (from %s)", source.Key, source.Value, source.Source), nil)
	}
}

// InitConfig initializes the global viper instance: defaults, a .env file,
// RDSINFO_ environment variables and an optional config.yaml in the working
// directory. configFile, when set, replaces the search and must exist.
func InitConfig(configFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return initViper(viper.GetViper(), configFile)
}

func initViper(v *viper.Viper, configFile string) error {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		return SetConfigFile(v, configFile)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".") // Current directory only

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		logging.Debug("No config file found, using defaults and environment variables", nil)
		return nil
	}

	logging.Debug("Loaded config file", map[string]interface{}{
		"path": v.ConfigFileUsed(),
	})
	return nil
}

// SetConfigFile sets a custom config file path and reads it
func SetConfigFile(v *viper.Viper, configFile string) error {
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	logging.Debug("Loaded config file", map[string]interface{}{
		"path": v.ConfigFileUsed(),
	})
	return nil
}

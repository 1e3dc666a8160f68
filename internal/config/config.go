// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads and writes the Vaultmaster configuration. Values are
// layered: defaults, then the config file, then environment variables with
// the VAULTMASTER_ prefix, then command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the on-disk configuration shape for vaultmaster.yaml.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Vaultmaster")
		default: // Linux, macOS, etc.
			configDir = "/etc/vaultmaster"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "vaultmaster")
	}

	return filepath.Join(configDir, "vaultmaster.yaml"), nil
}

// LoadConfig builds a config value from defaults, config files, environment
// and the command's flags, in ascending precedence. An explicit file path
// pins the file-based layer to that file alone.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitConfigFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("vaultmaster")
	v.SetConfigType("yaml")

	if explicitConfigFile != nil {
		v.SetConfigFile(*explicitConfigFile)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for vaultmaster.yaml in current dir

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// A repo-local `.vaultmaster.yaml` in the current directory overrides the
	// main file. Handy for per-project vaults.
	mergeLocalOverride(v)

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("vaultmaster")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// mergeLocalOverride merges `.vaultmaster.yaml` from the current directory
// into the viper configuration when present. A malformed override file is
// skipped rather than failing startup.
func mergeLocalOverride(v *viper.Viper) {
	localConfigFile := ".vaultmaster.yaml"
	if _, err := os.Stat(localConfigFile); err == nil {
		v.SetConfigFile(localConfigFile)
		_ = v.MergeInConfig()
		v.SetConfigFile("")
	}
}

// WriteConfigFile persists the configuration as YAML. The file is written
// with mode 0600; the DSN can carry database credentials.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}

package cmdutil

import (
	"fmt"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/internal/logger"
	"github.com/ryan-gang/smtp-client/internal/util"
	"github.com/spf13/cobra"
)

// Names accepted by --source.
const (
	SourceRegistry = "registry"
	SourceEnv      = "env"
)

// LoadProviderFromFlags builds the default-value provider selected by --source.
func LoadProviderFromFlags(cmd *cobra.Command) (config.Provider, error) {
	source, err := cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}

	switch source {
	case SourceRegistry, "":
		return LoadRegistryFromFlags(cmd)
	case SourceEnv:
		dotenv, err := cmd.Flags().GetString("dotenv")
		if err != nil {
			return nil, err
		}
		if dotenv == "" {
			return config.LoadEnv()
		}
		return config.LoadEnv(dotenv)
	default:
		return nil, fmt.Errorf("unknown source %q, want %q or %q", source, SourceRegistry, SourceEnv)
	}
}

// LoadRegistryFromFlags loads the system settings file overlaid with the
// file named by --config.
func LoadRegistryFromFlags(cmd *cobra.Command) (*config.Registry, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadRegistry(config.SystemSettingsPath, configPath)
}

// LoadProviderOrExit loads the provider and prints the error if it fails
func LoadProviderOrExit(cmd *cobra.Command) config.Provider {
	cfg, err := LoadProviderFromFlags(cmd)
	if err != nil {
		util.LogError("loading configuration", err)
		return nil
	}
	return cfg
}

// LoggerFromFlags creates a logger honouring --verbose and --log-file.
func LoggerFromFlags(cmd *cobra.Command) (logger.LoggerInterface, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}
	return logger.NewLogger(logger.Options{Path: logFile, Verbose: verbose})
}

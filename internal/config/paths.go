package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

const (
	XdgConfigHome    = "XDG_CONFIG_HOME"
	ConfigFolderName = "smtp-client"
	SettingsFileName = "settings.yaml"
	// SystemSettingsPath is layered underneath the per-user file.
	SystemSettingsPath = "/etc/smtp-client/settings.yaml"
)

// DefaultConfigPath returns the per-user settings file location,
// honouring XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv(XdgConfigHome); xdg != "" {
		return filepath.Join(xdg, ConfigFolderName, SettingsFileName), nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("couldn't get current user: %w", err)
	}
	return filepath.Join(u.HomeDir, ".config", ConfigFolderName, SettingsFileName), nil
}

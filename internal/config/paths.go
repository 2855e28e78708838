package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "STOREPLAN_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "storeplan.yaml"
	// ConfigDirName is the directory under XDG config home and /etc
	ConfigDirName = "storeplan"
)

// SearchPaths lists the config file candidates in priority order:
// $STOREPLAN_CONFIG, ./storeplan.yaml, $XDG_CONFIG_HOME/storeplan/config.yaml,
// ~/.config/storeplan/config.yaml and /etc/storeplan/config.yaml.
// Candidates whose environment variable is unset are left out.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}

	local := ConfigFileName
	if abs, err := filepath.Abs(local); err == nil {
		local = abs
	}
	paths = append(paths, local)

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing search path, or "" when there is none
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where `config init` writes a new file: the user config
// directory when one is known, the working directory otherwise
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDirName, "config.yaml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory of configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath points at an explicit config file and wins over the
	// search path.
	EnvConfigPath = "AXIOMARIUM_CONFIG"
	// ConfigFileName is the file looked for in the working directory.
	ConfigFileName = "axiomarium.yaml"
	// ConfigDirName is the per-user and system config directory.
	ConfigDirName = "axiomarium"
)

// FindConfigPath returns the first config file that exists, checking
// $AXIOMARIUM_CONFIG, then ./axiomarium.yaml, then config.yaml under
// $XDG_CONFIG_HOME/axiomarium, ~/.config/axiomarium, and /etc/axiomarium.
// An empty string means nothing was found; a dangling env path is skipped
// rather than failing the search.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	for _, dir := range configDirs() {
		if path := filepath.Join(dir, "config.yaml"); fileExists(path) {
			return path
		}
	}
	return ""
}

// configDirs lists the candidate config directories in priority order.
// The system-wide /etc entry is always last.
func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, ConfigDirName))
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	return append(dirs, filepath.Join("/etc", ConfigDirName))
}

// DefaultConfigPath returns where a new config file should be written:
// the preferred user config directory, or the working directory when no
// user directory can be derived.
func DefaultConfigPath() string {
	if dirs := configDirs(); len(dirs) > 1 {
		return filepath.Join(dirs[0], "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory for configPath if needed.
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is looked up in the working directory
	ProjectConfigFile = "packvault.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/packvault"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader resolves the configuration file and applies environment overrides
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv}
}

// Load builds the configuration from the defaults, then the file at path,
// then credential environment variables. When path is empty the first
// existing file of ./packvault.yaml and ~/.config/packvault/config.yaml is
// used. An explicit path that cannot be read is an error; missing default files are not.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config", slog.String("path", path))
		config = loaded
	} else if found := l.findConfig(); found != "" {
		loaded, err := LoadFromFile(found)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config", slog.String("path", found))
		config = loaded
	} else {
		l.logger.Debug("no config file found, using defaults")
	}

	config.ApplyEnv(l.getenv)
	return config, nil
}

func (l *Loader) findConfig() string {
	candidates := []string{ProjectConfigFile}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, UserConfigDir, UserConfigFile))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

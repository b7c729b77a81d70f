package archiveconfig

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name searched for
// in the current directory.
const DefaultConfigFile = "archivist.yaml"

// ErrConfigNotFound is returned when the configuration file does not
// exist at the resolved path.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfig loads a Config from a YAML file at path. Unset sections in
// the file keep NewConfig's defaults: the file is unmarshaled onto a
// defaulted Config rather than a zero value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = path

	return cfg, nil
}

// LoadHostOverrides loads per-host overrides from a YAML file. If the
// file does not exist, it returns ErrConfigNotFound.
func LoadHostOverrides(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Hosts == nil {
		f.Hosts = make(map[string]HostOverride)
	}

	return &f, nil
}

// FindConfigFile searches for the configuration file in the following
// order:
//  1. configPath, if explicitly given
//  2. DefaultConfigFile in the current directory
//  3. DefaultConfigFile in the XDG config directory
//
// Returns the resolved path, or empty string if none was found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

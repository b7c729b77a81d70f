package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/cache"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig resolves the effective Config for a command: start from
// NewConfig's defaults, then layer in a YAML file if one was found
// (explicitly requested via --config, or discovered in the current or
// XDG config directory). An explicitly requested file that doesn't
// exist is an error; a file that was merely probed for is not.
func loadConfig(cmd *cobra.Command) (*archiveconfig.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := archiveconfig.FindConfigFile(explicit)
	if path == "" {
		if explicit != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicit)
		}
		return archiveconfig.NewConfig(), nil
	}

	cfg, err := archiveconfig.LoadConfig(path)
	if err != nil && !errors.Is(err, archiveconfig.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load configuration file %s: %w", path, err)
	}
	if err != nil {
		return archiveconfig.NewConfig(), nil
	}
	return cfg, nil
}

// openStore opens the session cache rooted at cfg.Cache.Directory.
func openStore(cfg *archiveconfig.Config, log *slog.Logger) (*cache.Store, error) {
	dir := cfg.Cache.Directory
	if dir == "" {
		dir = archiveconfig.XDGCacheDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return cache.Open(dir, cfg.Cache, log)
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tacsim/internal/cache"
	"tacsim/internal/config"
)

// loadConfig reads --config, or the nearest tacsim.toml, or the defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}

// applySimFlags lets command flags override the [simulator] table.
func applySimFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("max-steps") {
		n, err := cmd.Flags().GetInt("max-steps")
		if err != nil {
			return fmt.Errorf("failed to get max-steps flag: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("--max-steps must be positive, got %d", n)
		}
		cfg.Simulator.MaxSteps = n
	}
	return nil
}

// openResultCache returns nil when caching is off.
func openResultCache(cmd *cobra.Command, cfg config.Config) (*cache.Results, error) {
	enabled := cfg.Cache.Enabled
	if cmd.Flags().Changed("cache") {
		v, err := cmd.Flags().GetBool("cache")
		if err != nil {
			return nil, fmt.Errorf("failed to get cache flag: %w", err)
		}
		enabled = v
	}
	if !enabled {
		return nil, nil
	}

	disk, err := openDiskCache(cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewResults(disk, 16), nil
}

// openDiskCache opens [cache].dir, or the per-user cache when it is empty.
func openDiskCache(cfg config.Config) (*cache.DiskCache, error) {
	var (
		disk *cache.DiskCache
		err  error
	)
	if dir := cfg.CacheDir(); dir != "" {
		disk, err = cache.Open(dir)
	} else {
		disk, err = cache.OpenDefault("tacsim")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return disk, nil
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (text, name string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), filepath.Clean(args[0]), nil
}

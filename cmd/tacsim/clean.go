package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tacsim/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached simulation results",
	Long:  "Remove every entry of the result cache named by [cache].dir (or the per-user cache).",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return cleanCache(cmd.OutOrStdout(), cfg)
}

func cleanCache(out io.Writer, cfg config.Config) error {
	disk, err := openDiskCache(cfg)
	if err != nil {
		return err
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", disk.Dir(), err)
	}
	_, _ = fmt.Fprintf(out, "removed cached results in %s\n", disk.Dir())
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tacsim/internal/cache"
	"tacsim/internal/config"
	"tacsim/internal/observ"
	"tacsim/internal/report"
	"tacsim/internal/sim"
	"tacsim/internal/stage"
)

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Simulate a TAC dump and print the returned value",
	Long: `Simulate the three-address code in a file (or stdin) and print the
assignment trace and the value main returns. Full compiler output is
accepted; the intermediate-code section is extracted unless --raw is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecution,
}

func init() {
	runCmd.Flags().String("format", "", "output format (text|json|yaml|inline)")
	runCmd.Flags().Bool("show-temps", false, "include compiler temporaries in the trace")
	runCmd.Flags().Bool("show-diagnostics", false, "list diagnostics after the result")
	runCmd.Flags().Int("max-steps", sim.DefaultMaxSteps, "instruction budget per run")
	runCmd.Flags().Bool("raw", false, "treat input as a bare TAC dump")
	runCmd.Flags().Bool("cache", false, "reuse results from the on-disk cache")
}

func runExecution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err = applySimFlags(cmd, &cfg); err != nil {
		return err
	}

	format, err := outputFormat(cmd, cfg)
	if err != nil {
		return err
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}
	opts, err := reportOptions(cmd, cfg, os.Stdout)
	if err != nil {
		return err
	}
	results, err := openResultCache(cmd, cfg)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()

	var text string
	var readErr error
	timer.Measure("read", func() string {
		text, _, readErr = readInput(cmd, args)
		return ""
	})
	if readErr != nil {
		return readErr
	}

	if !raw {
		timer.Measure("extract", func() string {
			text = stage.TAC(text)
			return ""
		})
	}

	simulator := sim.New(cfg.SimOptions())
	var (
		res sim.Result
		hit bool
		key cache.Digest
	)
	if results != nil {
		key = cache.Key(text, simulator.Options())
		timer.Measure("cache", func() string {
			res, hit = results.Lookup(key)
			if hit {
				return "hit"
			}
			return "miss"
		})
	}
	if !hit {
		timer.Measure("simulate", func() string {
			res = simulator.RunText(cmd.Context(), text)
			return res.Outcome.String()
		})
		if results != nil {
			if err := results.Store(key, res); err != nil && !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}
	}

	var renderErr error
	timer.Measure("report", func() string {
		renderErr = writeResult(cmd.OutOrStdout(), res, format, opts)
		return format
	})
	if renderErr != nil {
		return renderErr
	}

	if showTimings(cmd) {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		printCacheStats(cmd.ErrOrStderr(), results)
	}
	return nil
}

func outputFormat(cmd *cobra.Command, cfg config.Config) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = cfg.Report.Format
	}
	if !slices.Contains(config.Formats, format) {
		return "", fmt.Errorf("unsupported format %q (must be %s)", format, strings.Join(config.Formats, ", "))
	}
	return format, nil
}

func reportOptions(cmd *cobra.Command, cfg config.Config, out *os.File) (report.Options, error) {
	opts := cfg.ReportOptions()
	if cmd.Flags().Changed("show-temps") {
		opts.ShowTemporaries, _ = cmd.Flags().GetBool("show-temps")
	}
	if cmd.Flags().Changed("show-diagnostics") {
		opts.ShowDiagnostics, _ = cmd.Flags().GetBool("show-diagnostics")
	}
	color, err := useColor(cmd, out)
	if err != nil {
		return report.Options{}, err
	}
	opts.Color = color
	return opts, nil
}

func writeResult(out io.Writer, res sim.Result, format string, opts report.Options) error {
	switch format {
	case "json":
		data, err := report.JSON(res, opts.ShowTemporaries)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := report.YAML(res, opts.ShowTemporaries)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "inline":
		_, err := fmt.Fprintln(out, report.Inline(res, opts.ShowTemporaries))
		return err
	default:
		return report.Render(out, res, opts)
	}
}

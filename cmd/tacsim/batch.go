package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tacsim/internal/batch"
	"tacsim/internal/report"
	"tacsim/internal/sim"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir|file>...",
	Short: "Simulate many dumps in parallel",
	Long: `Simulate every dump under the given directories (and any files named
directly) and print one line per file followed by a summary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	batchCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	batchCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	batchCmd.Flags().Int("max-steps", sim.DefaultMaxSteps, "instruction budget per run")
	batchCmd.Flags().Bool("show-temps", false, "include compiler temporaries in traces")
	batchCmd.Flags().Bool("raw", false, "treat inputs as bare TAC dumps")
	batchCmd.Flags().Bool("cache", false, "reuse results from the on-disk cache")
}

type batchFileDoc struct {
	Path   string           `json:"path" yaml:"path"`
	Cached bool             `json:"cached,omitempty" yaml:"cached,omitempty"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
	Result *report.Document `json:"result,omitempty" yaml:"result,omitempty"`
}

type batchDoc struct {
	Files   []batchFileDoc `json:"files" yaml:"files"`
	Summary batch.Summary  `json:"summary" yaml:"summary"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err = applySimFlags(cmd, &cfg); err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	showTemps, err := cmd.Flags().GetBool("show-temps")
	if err != nil {
		return fmt.Errorf("failed to get show-temps flag: %w", err)
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}

	jobs := cfg.Batch.Jobs
	if cmd.Flags().Changed("jobs") {
		if jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}

	files, err := collectBatchFiles(args, cfg.Batch.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no dumps found (extensions %s)", strings.Join(cfg.Batch.Extensions, ", "))
	}

	results, err := openResultCache(cmd, cfg)
	if err != nil {
		return err
	}

	opts := batch.Options{
		Jobs:       jobs,
		Extensions: cfg.Batch.Extensions,
		Sim:        cfg.SimOptions(),
		Cache:      results,
		Raw:        raw,
	}

	started := time.Now()
	var fileResults []batch.FileResult
	if shouldUseTUI(mode, len(files)) && format == "text" && !quiet(cmd) {
		fileResults, err = runBatchWithUI(cmd.Context(), "simulating", files, opts)
	} else {
		fileResults, err = batch.Run(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}
	wall := time.Since(started)

	summary := batch.Summarize(fileResults)
	out := cmd.OutOrStdout()
	switch format {
	case "json", "yaml":
		doc := newBatchDoc(fileResults, summary, showTemps)
		if err := encodeBatchDoc(out, doc, format); err != nil {
			return err
		}
	default:
		for _, r := range fileResults {
			if r.Err != nil {
				fmt.Fprintf(out, "%s: error: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", r.Path, report.Inline(r.Result, showTemps))
		}
		if !quiet(cmd) {
			fmt.Fprintln(out, summary.String())
		}
	}

	if showTimings(cmd) {
		printBatchTimings(cmd.ErrOrStderr(), fileResults, wall)
		printCacheStats(cmd.ErrOrStderr(), results)
	}
	if summary.Errors > 0 {
		return fmt.Errorf("%d of %d files could not be read", summary.Errors, summary.Files)
	}
	return nil
}

// collectBatchFiles expands directories and keeps plain files as given.
func collectBatchFiles(args, exts []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := batch.ListFiles(arg, exts)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func newBatchDoc(results []batch.FileResult, summary batch.Summary, showTemps bool) batchDoc {
	doc := batchDoc{Files: make([]batchFileDoc, 0, len(results)), Summary: summary}
	for _, r := range results {
		fd := batchFileDoc{Path: r.Path, Cached: r.Cached}
		if r.Err != nil {
			fd.Error = r.Err.Error()
		} else {
			d := report.NewDocument(r.Result, showTemps)
			fd.Result = &d
		}
		doc.Files = append(doc.Files, fd)
	}
	return doc
}

func encodeBatchDoc(out io.Writer, doc batchDoc, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

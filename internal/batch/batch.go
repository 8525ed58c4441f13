// Package batch simulates many TAC dumps in parallel.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tacsim/internal/cache"
	"tacsim/internal/observ"
	"tacsim/internal/sim"
	"tacsim/internal/stage"
	"tacsim/internal/trace"
)

// DefaultExtensions are the dump suffixes ListFiles picks up.
var DefaultExtensions = []string{".tac", ".ir", ".txt"}

type Options struct {
	Jobs       int // 0 means GOMAXPROCS
	Extensions []string
	Sim        sim.Options
	Cache      *cache.Results // optional
	Sink       ProgressSink   // optional
	// Raw skips stage extraction and treats every file as a bare dump.
	Raw bool
}

// FileResult is the outcome for one file. Err is set only for I/O
// failures; a program that cannot be simulated still has a Result.
type FileResult struct {
	Path    string
	Result  sim.Result
	Cached  bool
	Err     error
	Timing  observ.Report
	Elapsed time.Duration
}

// ListFiles returns every file under dir with one of exts, sorted.
func ListFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// RunDir simulates every dump under dir.
func RunDir(ctx context.Context, dir string, opts Options) ([]FileResult, error) {
	files, err := ListFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	return Run(ctx, files, opts)
}

// Run simulates files in parallel. Results come back in the order of files.
// Per-file read errors are recorded in FileResult.Err; only cancellation of
// ctx fails the whole batch.
func Run(ctx context.Context, files []string, opts Options) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "batch", trace.CurrentSpan(ctx))
	span.WithExtra("files", strconv.Itoa(len(files))).WithExtra("jobs", strconv.Itoa(jobs))
	ctx = trace.WithSpan(ctx, span)

	simulator := sim.New(opts.Sim)
	for _, path := range files {
		sink.OnEvent(Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	// Результаты: индекс i уникален для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = runFile(gctx, simulator, path, opts, sink)
			return nil
		})
	}
	err := g.Wait()
	span.End(fmt.Sprintf("%d files", len(files)))
	sink.OnEvent(Event{Stage: StageSimulate, Status: StatusDone})
	return results, err
}

func runFile(ctx context.Context, simulator *sim.Simulator, path string, opts Options, sink ProgressSink) FileResult {
	started := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.CurrentSpan(ctx))
	span.WithExtra("path", path)
	ctx = trace.WithSpan(ctx, span)

	timer := observ.NewTimer()
	res := FileResult{Path: path}
	finish := func(status Status) FileResult {
		res.Elapsed = time.Since(started)
		res.Timing = timer.Report()
		ev := Event{File: path, Stage: StageSimulate, Status: status, Err: res.Err, Elapsed: res.Elapsed}
		if res.Err == nil {
			ev.Outcome = res.Result.Outcome.String()
		}
		sink.OnEvent(ev)
		span.End(string(status))
		return res
	}

	sink.OnEvent(Event{File: path, Stage: StageRead, Status: StatusWorking})
	var data []byte
	timer.Measure("read", func() string {
		data, res.Err = os.ReadFile(path)
		return ""
	})
	if res.Err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, res.Err)
		return finish(StatusError)
	}

	text := string(data)
	if !opts.Raw {
		sink.OnEvent(Event{File: path, Stage: StageExtract, Status: StatusWorking})
		timer.Measure("extract", func() string {
			text = stage.TAC(text)
			return ""
		})
	}

	var key cache.Digest
	if opts.Cache != nil {
		key = cache.Key(text, simulator.Options())
		hit := false
		timer.Measure("cache", func() string {
			res.Result, hit = opts.Cache.Lookup(key)
			if hit {
				return "hit"
			}
			return "miss"
		})
		if hit {
			res.Cached = true
			return finish(StatusCached)
		}
	}

	sink.OnEvent(Event{File: path, Stage: StageSimulate, Status: StatusWorking})
	timer.Measure("simulate", func() string {
		res.Result = simulator.RunText(ctx, text)
		return res.Result.Outcome.String()
	})

	if opts.Cache != nil {
		// a failed write only costs a future miss
		_ = opts.Cache.Store(key, res.Result)
	}
	return finish(StatusDone)
}

// Summary counts outcomes across a batch.
type Summary struct {
	Files          int `json:"files" yaml:"files"`
	Values         int `json:"values" yaml:"values"`
	Estimated      int `json:"estimated" yaml:"estimated"`
	ArrayDependent int `json:"array_dependent" yaml:"array_dependent"`
	Unresolved     int `json:"unresolved" yaml:"unresolved"`
	Errors         int `json:"errors" yaml:"errors"`
	Cached         int `json:"cached" yaml:"cached"`
}

func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Cached {
			s.Cached++
		}
		if r.Err != nil {
			s.Errors++
			continue
		}
		switch r.Result.Outcome {
		case sim.OutcomeValue:
			s.Values++
			if r.Result.Resolution.IsGuess() {
				s.Estimated++
			}
		case sim.OutcomeArrayDependent:
			s.ArrayDependent++
		default:
			s.Unresolved++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files: %d values (%d estimated), %d array-dependent, %d unresolved, %d errors, %d cached",
		s.Files, s.Values, s.Estimated, s.ArrayDependent, s.Unresolved, s.Errors, s.Cached)
}

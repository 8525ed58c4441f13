package main

import (
	"fmt"
	"io"
	"time"

	"tacsim/internal/batch"
	"tacsim/internal/cache"
	"tacsim/internal/observ"
)

// printBatchTimings prints phase totals across files and the wall-clock time.
func printBatchTimings(out io.Writer, results []batch.FileResult, wall time.Duration) {
	if out == nil {
		return
	}
	reports := make([]observ.Report, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.Timing)
	}
	fmt.Fprint(out, observ.Sum(reports).Summary())
	fmt.Fprintf(out, "wall %.1f ms\n", toMillis(wall))
}

// printCacheStats reports lookups against the result cache; nil means caching
// was off and nothing is printed.
func printCacheStats(out io.Writer, results *cache.Results) {
	if out == nil || results == nil {
		return
	}
	hits, misses := results.Stats()
	fmt.Fprintf(out, "cache %d hits, %d misses\n", hits, misses)
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

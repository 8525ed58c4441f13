// Package trace records what tacsim does while it works.
//
// Tracing is off by default. The CLI turns it on with
//
//	tacsim run --trace=- --trace-level=debug dump.tac
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: nothing is streamed; the ring buffer is kept for dumps
//   - LevelPhase: driver and pass spans (extract, classify, simulate, report)
//   - LevelDetail: per-file spans in batch runs
//   - LevelDebug: one point event per executed TAC instruction
//
// # Tracers
//
//   - Nop: zero overhead when disabled
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory
//   - MultiTracer: fans out to several tracers
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "simulate", 0)
//	defer span.End("")
package trace

package batch

import "time"

// Stage describes where a file is in the batch pipeline.
type Stage string

const (
	// StageRead loads the dump from disk.
	StageRead Stage = "read"
	// StageExtract isolates the TAC section of compiler output.
	StageExtract Stage = "extract"
	// StageSimulate classifies and runs the program.
	StageSimulate Stage = "simulate"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached"
	StatusError   Status = "error"
)

// Event reports progress for one file, or for the whole batch when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Outcome string // sim outcome, set with StatusDone and StatusCached
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

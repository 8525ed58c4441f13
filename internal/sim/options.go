package sim

import "tacsim/internal/tac"

const (
	// DefaultMaxSteps bounds every run regardless of program length.
	DefaultMaxSteps = 1000
	// DefaultTempPrefix is the compiler's temporary naming convention (t0, t1, ...).
	DefaultTempPrefix = "t"
	// DefaultCallKeyword marks opaque call results.
	DefaultCallKeyword = "call"
	// DefaultSmallIntLimit is the largest literal treated as an array size.
	DefaultSmallIntLimit = 1024
)

// Options configures a Simulator. Zero fields take the defaults above.
type Options struct {
	MaxSteps       int
	LabelPrefix    string
	TempPrefix     string
	CallKeyword    string
	SmallIntLimit  int64
	MaxDiagnostics int
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.LabelPrefix == "" {
		o.LabelPrefix = tac.DefaultLabelPrefix
	}
	if o.TempPrefix == "" {
		o.TempPrefix = DefaultTempPrefix
	}
	if o.CallKeyword == "" {
		o.CallKeyword = DefaultCallKeyword
	}
	if o.SmallIntLimit <= 0 {
		o.SmallIntLimit = DefaultSmallIntLimit
	}
	return o
}

// ClassifyOptions returns the classifier settings matching o.
func (o Options) ClassifyOptions() tac.Options {
	o = o.withDefaults()
	return tac.Options{LabelPrefix: o.LabelPrefix, MaxDiagnostics: o.MaxDiagnostics}
}

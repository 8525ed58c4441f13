package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for lines the classifier recognised as noise.
	SevInfo Severity = iota
	// SevWarning is for input the simulator had to step around.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

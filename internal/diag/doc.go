// Package diag defines the diagnostic model shared by the classifier and the
// simulator.
//
// Nothing in the TAC pipeline fails hard: lines that cannot be classified
// degrade to skips and jumps to unknown labels fall through. Package diag is
// where those degradations become visible. Each Diagnostic carries a Severity,
// a stable Code (TACxxxx for the classifier, SIMxxxx for the simulator), a
// short message and the 1-based input line it refers to.
//
// Producers emit through a Reporter; BagReporter stores into a bounded Bag and
// DedupReporter suppresses repeats (a jump inside a loop reports once).
package diag

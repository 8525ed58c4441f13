package diag

// Reporter задаёт минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(code Code, sev Severity, line int, msg string)
}

// BagReporter пишет диагностики в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, line int, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(New(sev, code, line, msg))
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, int, string) {}

type dedupKey struct {
	code Code
	line int
	msg  string
}

// DedupReporter forwards each (code, line, message) triple once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, line int, msg string) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, line: line, msg: msg}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, line, msg)
	}
}

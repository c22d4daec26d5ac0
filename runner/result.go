package runner

import "sync"

// Result is the append-only accumulator for a batch run. It is shared by
// all concurrent tasks; appends are serialized, entries are never mutated
// or removed, and ordering reflects completion order, not input order.
type Result struct {
	mu        sync.Mutex
	converted []string
	failed    []string
}

func (r *Result) AddConverted(name string) {
	r.mu.Lock()
	r.converted = append(r.converted, name)
	r.mu.Unlock()
}

func (r *Result) AddFailed(name string) {
	r.mu.Lock()
	r.failed = append(r.failed, name)
	r.mu.Unlock()
}

// Snapshot returns copies of the converted output names and failed input
// names recorded so far.
func (r *Result) Snapshot() (converted, failed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	converted = append([]string(nil), r.converted...)
	failed = append([]string(nil), r.failed...)
	return converted, failed
}

package presence

// Outcome reports what a synchronization pass did. Synchronization is a
// secondary effect of the mutation that triggered it: a failed pass is logged
// and counted, never returned as an error, so the primary operation's result
// type cannot be polluted by it.
type Outcome struct {
	Pass string

	Created int
	Updated int
	Deleted int

	// Err carries the aggregated per-entity failures of the pass. It is kept
	// for tests and diagnostics; callers must not propagate it.
	Err error
}

// Applied reports whether the pass completed without failures.
func (o Outcome) Applied() bool {
	return o.Err == nil
}

// Changed reports whether the pass wrote anything.
func (o Outcome) Changed() bool {
	return o.Created+o.Updated+o.Deleted > 0
}

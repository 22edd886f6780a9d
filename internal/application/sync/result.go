package sync

// RecordError captures one record-level failure for later persistence.
type RecordError struct {
	PlatformID string
	Stage      string
	Message    string
}

// Result accumulates per-record outcomes for one page. Skipped counts
// records the dirty check left untouched; they still count as succeeded, so
// Succeeded+Failed always equals Processed.
type Result struct {
	Processed int64
	Succeeded int64
	Failed    int64
	Skipped   int64

	// Errors holds one entry per failed platform record, persisted by the
	// engine alongside the progress flush.
	Errors []RecordError
}

func (r *Result) success() {
	r.Processed++
	r.Succeeded++
}

func (r *Result) skip() {
	r.Processed++
	r.Succeeded++
	r.Skipped++
}

func (r *Result) fail(platformID, stage string, err error) {
	r.Processed++
	r.Failed++
	r.Errors = append(r.Errors, RecordError{
		PlatformID: platformID,
		Stage:      stage,
		Message:    err.Error(),
	})
}

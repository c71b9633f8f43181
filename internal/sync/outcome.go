package sync

import "remsync/internal/readwise"

// Status classifies what happened to one document during a run.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the per-document result consumed by the run loop. Failures
// never unwind past the loop boundary; they travel here instead.
type Outcome struct {
	DocID  string
	Title  string
	Status Status
	Reason string
	Err    error
}

func skipped(doc readwise.Document, reason string) Outcome {
	return Outcome{DocID: doc.ID, Title: doc.Title, Status: StatusSkipped, Reason: reason}
}

func failed(doc readwise.Document, reason string, err error) Outcome {
	return Outcome{DocID: doc.ID, Title: doc.Title, Status: StatusFailed, Reason: reason, Err: err}
}

// Summary aggregates a run.
type Summary struct {
	Found   int
	New     int
	Done    int
	Skipped int
	Failed  int
}

func (s *Summary) record(o Outcome) {
	switch o.Status {
	case StatusDone:
		s.Done++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

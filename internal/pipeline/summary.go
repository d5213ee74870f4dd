package pipeline

import (
	"sync"
	"time"
)

// Outcome is the final disposition of one record within a run.
type Outcome string

const (
	// OutcomeProcessed means the record was analyzed and published.
	OutcomeProcessed Outcome = "processed"
	// OutcomeFailed means the record hit a permanent error and was
	// moved to the error status (or publishing itself failed).
	OutcomeFailed Outcome = "failed"
	// OutcomeDeferred means the record hit a transient error and was
	// left pending for a later run.
	OutcomeDeferred Outcome = "deferred"
)

// RecordResult is the per-record entry in a run summary.
type RecordResult struct {
	PageID     string    `json:"page_id"`
	FoodName   string    `json:"food_name,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	ErrorKind  Kind      `json:"error_kind,omitempty"`
	ErrorMsg   string    `json:"error,omitempty"`
	ReportName string    `json:"report_name,omitempty"`
	ReportURL  string    `json:"report_url,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunSummary describes one batch run.
type RunSummary struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	Processed  int            `json:"processed"`
	Failed     int            `json:"failed"`
	Deferred   int            `json:"deferred"`
	Results    []RecordResult `json:"results"`
}

func (s *RunSummary) add(r RecordResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeProcessed:
		s.Processed++
	case OutcomeFailed:
		s.Failed++
	case OutcomeDeferred:
		s.Deferred++
	}
}

const defaultHistorySize = 20

// History is a bounded, concurrency-safe record of recent runs, newest
// first. It backs the status endpoints.
type History struct {
	mu   sync.Mutex
	max  int
	runs []RunSummary
}

// NewHistory creates a History holding up to max runs (default 20).
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &History{max: max}
}

// Add records a completed run.
func (h *History) Add(s RunSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append([]RunSummary{s}, h.runs...)
	if len(h.runs) > h.max {
		h.runs = h.runs[:h.max]
	}
}

// Latest returns the most recent run, if any.
func (h *History) Latest() (RunSummary, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.runs) == 0 {
		return RunSummary{}, false
	}
	return h.runs[0], true
}

// Recent returns a copy of the recorded runs, newest first.
func (h *History) Recent() []RunSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RunSummary, len(h.runs))
	copy(out, h.runs)
	return out
}

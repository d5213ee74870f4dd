package pipeline

import "fmt"

// Kind classifies where in the pipeline a record failed.
type Kind string

const (
	KindIngest   Kind = "ingest"
	KindAnalysis Kind = "analysis"
	KindRender   Kind = "render"
	KindPublish  Kind = "publish"
)

// Error is a pipeline failure tagged with its stage. Transient marks
// failures expected to clear on a later scheduled run; the record is
// then left pending instead of being moved to error.
type Error struct {
	Kind      Kind
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

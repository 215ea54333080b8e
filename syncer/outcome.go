package syncer

import (
	"errors"
	"fmt"
)

// ErrPathMissing marks a sync argument that does not exist locally.
var ErrPathMissing = errors.New("local path not found")

type OutcomeKind int

const (
	OutcomeCreated OutcomeKind = iota + 1
	OutcomeAlreadyExists
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one file or collection operation. It is consumed
// by the report and the log, nothing persists it.
type Outcome struct {
	Kind       OutcomeKind
	LocalPath  string
	RemotePath string
	Err        error
}

// Report aggregates the outcomes of one sync run.
type Report struct {
	RunID string
	Items []Outcome
}

func (r *Report) Count(kind OutcomeKind) int {
	var cnt int
	for _, item := range r.Items {
		if item.Kind == kind {
			cnt++
		}
	}
	return cnt
}

// Err is non-nil when any item failed. Per-item failures never abort the run,
// they only decide the final process status.
func (r *Report) Err() error {
	failed := r.Count(OutcomeFailed)
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d items failed", failed, len(r.Items))
}

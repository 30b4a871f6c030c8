package tailoring_order

import (
	"fmt"
	"time"

	"salesledger/internal/core/apperror"
)

// StatusEntry is one step of the workflow history.
type StatusEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	By     string    `json:"by,omitempty"`
}

func sequenceIndex(status string) int {
	for i, s := range Sequence {
		if s == status {
			return i
		}
	}
	return -1
}

// Transition applies status to history. A status already present truncates
// everything recorded after it; a new status is appended only when it is the
// next one in Sequence.
func Transition(history []StatusEntry, status string, at time.Time, by string) ([]StatusEntry, error) {
	if sequenceIndex(status) < 0 {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown status %q", status)).
			WithDetail("allowed", Sequence)
	}

	for i, e := range history {
		if e.Status == status {
			return append([]StatusEntry(nil), history[:i+1]...), nil
		}
	}

	next := 0
	if n := len(history); n > 0 {
		next = sequenceIndex(history[n-1].Status) + 1
	}
	if next >= len(Sequence) || Sequence[next] != status {
		expected := "none"
		if next < len(Sequence) {
			expected = Sequence[next]
		}
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("status %s cannot follow the current status; next allowed status is %s", status, expected),
		).WithDetail("status", status)
	}

	out := make([]StatusEntry, 0, len(history)+1)
	out = append(out, history...)
	return append(out, StatusEntry{Status: status, At: at, By: by}), nil
}

package card

import (
	"strings"
)

// Status is a tracker workflow state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusAbandoned  Status = "abandoned"
	StatusUnknown    Status = "unknown"
)

// ParseStatus normalizes s. Empty or unrecognized values map to
// StatusUnknown.
func ParseStatus(s string) Status {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch st := Status(normalized); st {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusAbandoned:
		return st
	}
	return StatusUnknown
}

// StatusPolicy decides which statuses mask an item out of remaining work.
type StatusPolicy struct {
	Masked map[Status]bool
}

// DefaultStatusPolicy masks done and abandoned items.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{Masked: map[Status]bool{
		StatusDone:      true,
		StatusAbandoned: true,
	}}
}

// IsMasked reports whether items in status s are masked.
func (p StatusPolicy) IsMasked(s Status) bool {
	return p.Masked[s]
}

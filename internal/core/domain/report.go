package domain

import (
	"fmt"
	"time"
)

// ReportState represents the lifecycle state of a moderation report.
type ReportState string

const (
	StateChecking ReportState = "Checking"
	StateRejected ReportState = "Rejected"
	StateAccepted ReportState = "Accepted"
)

// validReportTransitions defines the allowed state machine transitions.
// Resolved reports are final.
var validReportTransitions = map[ReportState][]ReportState{
	StateChecking: {StateAccepted, StateRejected},
}

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (s ReportState) CanTransitionTo(next ReportState) bool {
	for _, allowed := range validReportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseReportState converts a raw string into a ReportState.
func ParseReportState(s string) (ReportState, error) {
	switch ReportState(s) {
	case StateChecking, StateRejected, StateAccepted:
		return ReportState(s), nil
	}
	return "", UnprocessableError(fmt.Sprintf("invalid report state %q", s))
}

// TargetKind identifies which content collection a report target lives in.
type TargetKind string

const (
	TargetComment  TargetKind = "comment"
	TargetRating   TargetKind = "rating"
	TargetPlaylist TargetKind = "playlist"
)

// ParseTargetKind converts a raw string into a TargetKind.
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetComment, TargetRating, TargetPlaylist:
		return TargetKind(s), nil
	}
	return "", UnprocessableError(fmt.Sprintf("invalid report target kind %q", s))
}

// Target is the single content item a report refers to. Modelling it as a
// tagged value makes "exactly one target" a type-level property; the storage
// layer spreads it over three optional fields.
type Target struct {
	Kind TargetKind
	ID   string
}

// Validate checks that the target carries a known kind and a non-empty id.
func (t Target) Validate() error {
	if _, err := ParseTargetKind(string(t.Kind)); err != nil {
		return err
	}
	if t.ID == "" {
		return UnprocessableError("report target id is required")
	}
	return nil
}

// Report is a moderation report filed by a user against a single content item.
// Reports are never deleted; an external decision process resolves them.
type Report struct {
	ID         string      `json:"id"`
	Target     Target      `json:"-"`
	ReporterID string      `json:"user_id"`
	AuthorID   string      `json:"author_id"`
	State      ReportState `json:"state"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a case
type Status string

// Case lifecycle stages, in order
const (
	StatusSubmitted     Status = "submitted"
	StatusUnderReview   Status = "under-review"
	StatusInvestigation Status = "investigation"
	StatusResolution    Status = "resolution"
	StatusCompleted     Status = "completed"
)

// Statuses lists every stage in lifecycle order
var Statuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusInvestigation,
	StatusResolution,
	StatusCompleted,
}

// StatusLabel is the human readable state shown on dashboards
type StatusLabel string

// Status labels
const (
	LabelCompleted  StatusLabel = "Completed"
	LabelInProgress StatusLabel = "In Progress"
	LabelOverdue    StatusLabel = "Overdue"
)

type stagePolicy struct {
	progress int
	label    StatusLabel
	title    string
}

var policies = map[Status]stagePolicy{
	StatusSubmitted:     {progress: 10, label: LabelInProgress, title: "Case Submitted"},
	StatusUnderReview:   {progress: 35, label: LabelInProgress, title: "Under Review"},
	StatusInvestigation: {progress: 60, label: LabelInProgress, title: "Investigation Started"},
	StatusResolution:    {progress: 85, label: LabelInProgress, title: "Resolution Phase"},
	StatusCompleted:     {progress: 100, label: LabelCompleted, title: "Case Resolved"},
}

// ParseStatus converts a raw string into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
	return st, nil
}

// Valid reports whether s is one of the lifecycle stages
func (s Status) Valid() bool {
	_, ok := policies[s]
	return ok
}

// UnmarshalJSON rejects values outside the lifecycle
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s Status) policy() stagePolicy {
	p, ok := policies[s]
	if !ok {
		// unknown values only reach here through hand-built structs
		panic(fmt.Sprintf("models: no policy for status %q", string(s)))
	}
	return p
}

// ProgressOf returns the completion percentage for a stage
func ProgressOf(s Status) int {
	return s.policy().progress
}

// LabelOf returns the label for a stage that has not been flagged stalled
func LabelOf(s Status) StatusLabel {
	return s.policy().label
}

// LabelFor returns the label for a stage, honouring the stalled flag.
// A completed case is never overdue.
func LabelFor(s Status, stalled bool) StatusLabel {
	label := LabelOf(s)
	if stalled && label != LabelCompleted {
		return LabelOverdue
	}
	return label
}

// TitleOf returns the timeline title recorded when a case enters s
func TitleOf(s Status) string {
	return s.policy().title
}

// DescriptionFor returns the timeline description for a transition into s
func DescriptionFor(s Status, note string) string {
	if strings.TrimSpace(note) != "" {
		return note
	}
	return fmt.Sprintf("Case has been updated to %s", TitleOf(s))
}

// LabelSlug returns the filter form of a label, e.g. "in-progress"
func (l StatusLabel) LabelSlug() string {
	return strings.ReplaceAll(strings.ToLower(string(l)), " ", "-")
}

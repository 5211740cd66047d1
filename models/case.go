package models

import "time"

// Priority is the handling priority of a case
type Priority string

// Case priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Case is a tracked incident report
type Case struct {
	ID            string       `bson:"_id" json:"id"`
	CaseNumber    string       `bson:"caseNumber" json:"caseNumber"`
	Type          string       `bson:"type" json:"type"`
	Description   string       `bson:"description" json:"description"`
	Province      string       `bson:"province" json:"province"`
	City          string       `bson:"city" json:"city"`
	Location      string       `bson:"location" json:"location"`
	StationName   string       `bson:"stationName" json:"stationName"`
	Anonymous     bool         `bson:"anonymous" json:"anonymous"`
	VictimID      string       `bson:"victimId" json:"victimId"`
	OfficerID     string       `bson:"officerId" json:"officerId"`
	Status        Status       `bson:"status" json:"status"`
	Progress      int          `bson:"progress" json:"progress"`
	StatusLabel   StatusLabel  `bson:"statusLabel" json:"statusLabel"`
	Stalled       bool         `bson:"stalled" json:"stalled"`
	Priority      Priority     `bson:"priority" json:"priority"`
	SubmittedDate time.Time    `bson:"submittedDate" json:"submittedDate"`
	LastUpdate    time.Time    `bson:"lastUpdate" json:"lastUpdate"`
	CreatedAt     time.Time    `bson:"createdAt" json:"createdAt"`
	Updates       []CaseUpdate `bson:"updates" json:"updates"`
}

// CaseUpdate is one immutable timeline entry
type CaseUpdate struct {
	ID          string    `bson:"id" json:"id"`
	Date        time.Time `bson:"date" json:"date"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Stage       Status    `bson:"stage" json:"stage"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
}

// SetStatus moves the case to s and recomputes the derived fields.
// Entering any stage clears the stalled flag.
func (c *Case) SetStatus(s Status) {
	c.Status = s
	c.Stalled = false
	c.Progress = ProgressOf(s)
	c.StatusLabel = LabelFor(s, false)
}

// SetStalled flags or clears the case as stalled and recomputes its label
func (c *Case) SetStalled(stalled bool) {
	c.Stalled = stalled
	c.StatusLabel = LabelFor(c.Status, stalled)
}

// CaseFields is the mutable state written back to a store together with
// an appended timeline entry
type CaseFields struct {
	Status      Status      `bson:"status"`
	Progress    int         `bson:"progress"`
	StatusLabel StatusLabel `bson:"statusLabel"`
	Stalled     bool        `bson:"stalled"`
	Priority    Priority    `bson:"priority"`
	OfficerID   string      `bson:"officerId"`
	LastUpdate  time.Time   `bson:"lastUpdate"`
}

// Fields returns the mutable state of c
func (c Case) Fields() CaseFields {
	return CaseFields{
		Status:      c.Status,
		Progress:    c.Progress,
		StatusLabel: c.StatusLabel,
		Stalled:     c.Stalled,
		Priority:    c.Priority,
		OfficerID:   c.OfficerID,
		LastUpdate:  c.LastUpdate,
	}
}

// ApplyFields copies f onto c
func (c *Case) ApplyFields(f CaseFields) {
	c.Status = f.Status
	c.Progress = f.Progress
	c.StatusLabel = f.StatusLabel
	c.Stalled = f.Stalled
	c.Priority = f.Priority
	c.OfficerID = f.OfficerID
	c.LastUpdate = f.LastUpdate
}

// Clone returns a copy of c that shares no slices with it
func (c Case) Clone() Case {
	out := c
	out.Updates = append([]CaseUpdate(nil), c.Updates...)
	return out
}

// CaseStats summarises cases for the police and admin dashboards
type CaseStats struct {
	Total          int            `json:"total"`
	InProgress     int            `json:"inProgress"`
	Overdue        int            `json:"overdue"`
	Resolved       int            `json:"resolved"`
	Escalated      int            `json:"escalated"`
	ResolutionRate int            `json:"resolutionRate"`
	ByStatus       map[Status]int `json:"byStatus"`
	ByType         map[string]int `json:"byType"`
	ByStation      map[string]int `json:"byStation"`
}

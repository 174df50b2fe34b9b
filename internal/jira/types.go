package jira

import "time"

// Filter is a favourite filter as listed by Jira.
type Filter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is the subset of issue fields the app needs.
type Issue struct {
	Key     string
	Summary string
}

// Estimate adjustment modes accepted by the worklog endpoint.
const (
	AdjustAuto  = "auto"
	AdjustLeave = "leave"
	AdjustNew   = "new"
)

// Submission is the payload assembled for one worklog post attempt. It is
// built fresh per attempt and never persisted.
type Submission struct {
	IssueKey          string
	Seconds           int
	Comment           string
	Started           time.Time
	AdjustEstimate    string
	RemainingEstimate *int
}

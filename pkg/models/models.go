// Package models defines data structures shared across the application.
package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// TicketStatus is the workflow state of a JIRA ticket.
type TicketStatus string

const (
	// StatusDone marks a ticket whose resolution instant has passed.
	StatusDone TicketStatus = "Done"
	// StatusInProgress marks a ticket still being worked on.
	StatusInProgress TicketStatus = "In Progress"
)

// Ticket represents a JIRA ticket as it appears in a Dataset.
type Ticket struct {
	// Key is the ticket identifier (e.g., "PROJ-142")
	Key string `json:"key" yaml:"key"`

	// Status is either Done or In Progress
	Status TicketStatus `json:"status" yaml:"status"`

	// Assignee is the display name of the engineer working the ticket
	Assignee string `json:"assignee" yaml:"assignee"`

	// CreatedAt is the instant the ticket was opened
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// ResolvedAt is the instant the ticket was resolved, nil unless Done
	ResolvedAt *time.Time `json:"resolved_at" yaml:"resolved_at"`

	// ChurnEvents counts requirement changes after work started
	ChurnEvents int `json:"churn_events" yaml:"churn_events"`
}

// PullRequest represents a GitHub pull request as it appears in a Dataset.
type PullRequest struct {
	// Title is the PR title, which may or may not reference a ticket key
	Title string `json:"title" yaml:"title"`

	// CreatedAt is the instant the PR was opened
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// MergedAt is the instant the PR was merged, nil while still open
	MergedAt *time.Time `json:"merged_at" yaml:"merged_at"`

	// Comments is the number of review comments on the PR
	Comments int `json:"comments" yaml:"comments"`
}

// Dataset is the ticket and pull request collection passed from the
// generator to the analyzer.
type Dataset struct {
	JiraTickets []Ticket      `json:"jira_tickets" yaml:"jira_tickets"`
	GitHubPRs   []PullRequest `json:"github_prs" yaml:"github_prs"`
}

// MarshalJSON renders nil sequences as empty arrays.
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	out := plain(d)
	if out.JiraTickets == nil {
		out.JiraTickets = []Ticket{}
	}
	if out.GitHubPRs == nil {
		out.GitHubPRs = []PullRequest{}
	}
	return json.Marshal(out)
}

// Percent is a percentage rendered with exactly one decimal place.
type Percent float64

// MarshalJSON implements json.Marshaler.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 1, 64)), nil
}

// Summary holds the aggregate statistics derived from a Dataset.
type Summary struct {
	GhostWorkPct   Percent `json:"ghost_work_pct" yaml:"ghost_work_pct"`
	HighChurnCount int     `json:"high_churn_count" yaml:"high_churn_count"`
	TotalTickets   int     `json:"total_tickets" yaml:"total_tickets"`
	TotalPRs       int     `json:"total_prs" yaml:"total_prs"`
}

// Report is the analyzer output: the summary plus the records it was
// computed from, echoed unchanged for downstream rendering.
type Report struct {
	Summary    Summary           `json:"summary"`
	RawTickets []json.RawMessage `json:"raw_tickets"`
	RawPRs     []json.RawMessage `json:"raw_prs"`
}

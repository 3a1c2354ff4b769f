package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ticketKeyRe = regexp.MustCompile(`^([A-Z]+)-(\d+)$`)

// FormatTicketKey builds a ticket key such as "PROJ-142".
func FormatTicketKey(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

// ParseTicketKey splits a ticket key into its project prefix and number.
// It reports false when the key is not of the form PREFIX-123.
func ParseTicketKey(key string) (string, int, bool) {
	m := ticketKeyRe.FindStringSubmatch(key)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// Validate checks the structural invariants of a generated Dataset against
// the instant it was generated at. Every violation found is returned in a
// single joined error.
func (d Dataset) Validate(now time.Time) error {
	var errs []error

	seen := make(map[string]bool, len(d.JiraTickets))
	last := -1
	for i, t := range d.JiraTickets {
		if seen[t.Key] {
			errs = append(errs, fmt.Errorf("ticket %d: duplicate key %q", i, t.Key))
		}
		seen[t.Key] = true

		_, n, ok := ParseTicketKey(t.Key)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("ticket %d: malformed key %q", i, t.Key))
		case n <= last:
			errs = append(errs, fmt.Errorf("ticket %d: key %q does not increase", i, t.Key))
		default:
			last = n
		}

		switch t.Status {
		case StatusDone:
			if t.ResolvedAt == nil {
				errs = append(errs, fmt.Errorf("ticket %s: done without resolved_at", t.Key))
			} else if t.ResolvedAt.After(now) {
				errs = append(errs, fmt.Errorf("ticket %s: resolved in the future", t.Key))
			}
		case StatusInProgress:
			if t.ResolvedAt != nil {
				errs = append(errs, fmt.Errorf("ticket %s: in progress with resolved_at", t.Key))
			}
		default:
			errs = append(errs, fmt.Errorf("ticket %s: unknown status %q", t.Key, t.Status))
		}

		if t.ResolvedAt != nil && t.ResolvedAt.Before(t.CreatedAt) {
			errs = append(errs, fmt.Errorf("ticket %s: resolved before created", t.Key))
		}
		if t.ChurnEvents < 0 {
			errs = append(errs, fmt.Errorf("ticket %s: negative churn_events", t.Key))
		}
	}

	for i, pr := range d.GitHubPRs {
		if pr.CreatedAt.After(now) {
			errs = append(errs, fmt.Errorf("pr %d: opened in the future", i))
		}
		if pr.MergedAt != nil && pr.MergedAt.Before(pr.CreatedAt) {
			errs = append(errs, fmt.Errorf("pr %d: merged before opened", i))
		}
		if pr.Comments < 0 {
			errs = append(errs, fmt.Errorf("pr %d: negative comments", i))
		}
	}

	return errors.Join(errs...)
}

// Package generator synthesizes a history of JIRA tickets and GitHub pull
// requests for a team that struggles with requirement churn, slow reviews
// and pull requests that are not linked to any ticket.
package generator

import (
	"time"

	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/pkg/models"
)

// Config controls the shape of a generated Dataset.
type Config struct {
	// Engineers is the size of the roster tickets are assigned from.
	Engineers int
	// Days is the length of the window ending at Now.
	Days int
	// KeyPrefix is the project part of ticket keys.
	KeyPrefix string
	// KeyBase is the number after which ticket keys start.
	KeyBase int

	WorkDayProbability    float64
	ChurnProbability      float64
	LongReviewProbability float64
	GhostProbability      float64

	// Now is the end of the window and the instant statuses are judged at.
	Now time.Time
}

// DefaultConfig returns the configuration of a 90-day window for a team of
// eight ending at now.
func DefaultConfig(now time.Time) Config {
	return Config{
		Engineers:             8,
		Days:                  90,
		KeyPrefix:             "PROJ",
		KeyBase:               100,
		WorkDayProbability:    0.7,
		ChurnProbability:      0.4,
		LongReviewProbability: 0.5,
		GhostProbability:      0.3,
		Now:                   now,
	}
}

// Roster draws n engineer names.
func Roster(n int, src *Source) []string {
	engineers := make([]string, n)
	for i := range engineers {
		engineers[i] = src.firstName()
	}
	return engineers
}

// Generate walks the calendar window and returns the tickets and pull
// requests opened in it. The result depends only on cfg and src.
func Generate(cfg Config, src *Source) models.Dataset {
	engineers := Roster(cfg.Engineers, src)

	dataset := models.Dataset{
		JiraTickets: []models.Ticket{},
		GitHubPRs:   []models.PullRequest{},
	}
	keys := keySequence{prefix: cfg.KeyPrefix, last: cfg.KeyBase}

	workDays := 0
	for _, day := range walk(cfg.Now, cfg.Days) {
		if !isWorkDay(day, src, cfg.WorkDayProbability) {
			continue
		}
		workDays++

		for n := src.between(1, 4); n > 0; n-- {
			var key string
			key, keys = keys.next()

			item := newWorkItem(day, key, engineers, cfg, src)
			dataset.JiraTickets = append(dataset.JiraTickets, item.ticket)

			if pr, ok := newPullRequest(item, cfg, src); ok {
				dataset.GitHubPRs = append(dataset.GitHubPRs, pr)
			}
		}
	}

	logging.Debug("generated dataset",
		"work_days", workDays,
		"tickets", len(dataset.JiraTickets),
		"prs", len(dataset.GitHubPRs),
		"last_key", models.FormatTicketKey(keys.prefix, keys.last))

	return dataset
}

package generator

import (
	"time"

	"github.com/danielolaszy/opsintel/pkg/models"
)

// keySequence hands out ticket keys. It is a value: next returns the key
// together with the advanced sequence, and the caller keeps the latter.
type keySequence struct {
	prefix string
	last   int
}

func (k keySequence) next() (string, keySequence) {
	k.last++
	return models.FormatTicketKey(k.prefix, k.last), k
}

// workItem is a ticket plus the schedule its pull request follows.
type workItem struct {
	ticket   models.Ticket
	prOpen   time.Time
	resolve  time.Time
	comments int
}

// newWorkItem opens a ticket on day and schedules its coding and review.
func newWorkItem(day time.Time, key string, engineers []string, cfg Config, src *Source) workItem {
	assignee := src.pick(engineers)

	// Unclear requirements: churny tickets take longer to code.
	churn, codingDays := 0, 0
	if src.chance(cfg.ChurnProbability) {
		churn = src.between(2, 5)
		codingDays = src.between(5, 12)
	} else {
		codingDays = src.between(1, 3)
	}
	prOpen := day.AddDate(0, 0, codingDays)

	var reviewDays, comments int
	if src.chance(cfg.LongReviewProbability) {
		reviewDays = src.between(3, 7)
		comments = src.between(10, 30)
	} else {
		reviewDays = src.between(0, 2)
		comments = src.between(0, 5)
	}
	resolve := prOpen.AddDate(0, 0, reviewDays)

	ticket := models.Ticket{
		Key:         key,
		Status:      models.StatusInProgress,
		Assignee:    assignee,
		CreatedAt:   day,
		ChurnEvents: churn,
	}
	if !resolve.After(cfg.Now) {
		resolvedAt := resolve
		ticket.Status = models.StatusDone
		ticket.ResolvedAt = &resolvedAt
	}

	return workItem{
		ticket:   ticket,
		prOpen:   prOpen,
		resolve:  resolve,
		comments: comments,
	}
}

// newPullRequest returns the PR for w, or false when it has not been opened
// yet. Ghost PRs leave the ticket key out of the title.
func newPullRequest(w workItem, cfg Config, src *Source) (models.PullRequest, bool) {
	if w.prOpen.After(cfg.Now) {
		return models.PullRequest{}, false
	}

	ghost := src.chance(cfg.GhostProbability)
	sentence := src.sentence(4)
	title := "feat: " + sentence
	if !ghost {
		title = "feat: " + w.ticket.Key + " " + sentence
	}

	pr := models.PullRequest{
		Title:     title,
		CreatedAt: w.prOpen,
		Comments:  w.comments,
	}
	if w.ticket.ResolvedAt != nil {
		mergedAt := *w.ticket.ResolvedAt
		pr.MergedAt = &mergedAt
	}
	return pr, true
}

package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/opsintel/pkg/models"
)

// ErrInvalidInput is returned when analyzer input cannot be parsed.
var ErrInvalidInput = errors.New("invalid JSON input")

// Input is what Analyze accepts: either Raw text or a Parsed dataset.
type Input interface {
	records() (records, error)
}

// Raw is a textual dataset, possibly wrapped in a Markdown code fence.
type Raw string

// Parsed is an already decoded dataset.
type Parsed models.Dataset

type records struct {
	tickets []json.RawMessage
	prs     []json.RawMessage
}

type rawDataset struct {
	JiraTickets []json.RawMessage `json:"jira_tickets"`
	GitHubPRs   []json.RawMessage `json:"github_prs"`
}

func (r Raw) records() (records, error) {
	text := Normalize(string(r))
	if !strings.HasPrefix(text, "{") {
		return records{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidInput)
	}

	var ds rawDataset
	if err := json.Unmarshal([]byte(text), &ds); err != nil {
		return records{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return records{tickets: ds.JiraTickets, prs: ds.GitHubPRs}, nil
}

func (p Parsed) records() (records, error) {
	var out records
	for _, t := range p.JiraTickets {
		raw, err := json.Marshal(t)
		if err != nil {
			return records{}, fmt.Errorf("encode ticket %s: %w", t.Key, err)
		}
		out.tickets = append(out.tickets, raw)
	}
	for _, pr := range p.GitHubPRs {
		raw, err := json.Marshal(pr)
		if err != nil {
			return records{}, fmt.Errorf("encode pr %q: %w", pr.Title, err)
		}
		out.prs = append(out.prs, raw)
	}
	return out, nil
}

// Normalize strips surrounding whitespace and, when the text is wrapped in a
// Markdown code fence, returns only the fenced body without its language
// tag. Bare JSON objects are returned trimmed even if their strings contain
// fence markers.
func Normalize(text string) string {
	const fence = "```"

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		return text
	}
	open := strings.Index(text, fence)
	if open < 0 {
		return text
	}

	body := text[open+len(fence):]
	if open == 0 {
		// The whole text is the fenced block: it closes at the last marker.
		if end := strings.LastIndex(body, fence); end >= 0 {
			body = body[:end]
		}
	} else if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}

	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if tag != "" && !strings.ContainsAny(tag, "{[") {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimPrefix(strings.TrimSpace(body), "json")
	}

	return strings.TrimSpace(body)
}

// isJSONObject reports whether raw holds a JSON object.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

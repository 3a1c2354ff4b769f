package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/danielolaszy/opsintel/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

var testReport = models.Report{
	Summary: models.Summary{GhostWorkPct: 50, HighChurnCount: 1, TotalTickets: 2, TotalPRs: 2},
	RawTickets: []json.RawMessage{
		json.RawMessage(`{"key":"PROJ-1","status":"Done","resolved_at":null,"churn_events":0}`),
	},
	RawPRs: []json.RawMessage{
		json.RawMessage(`{"title":"feat: PROJ-1 fix bug","comments":3}`),
	},
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testReport, FormatJSON))

	assert.Contains(t, buf.String(), `"ghost_work_pct": 50.0`)
	assert.Contains(t, buf.String(), `"resolved_at": null`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "raw_tickets")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testReport, FormatYAML))

	text := buf.String()
	assert.Contains(t, text, "summary:\n")
	assert.Contains(t, text, "ghost_work_pct: 50.0")
	assert.NotContains(t, text, "{")

	var decoded struct {
		Summary struct {
			GhostWorkPct float64 `yaml:"ghost_work_pct"`
			TotalPRs     int     `yaml:"total_prs"`
		} `yaml:"summary"`
		RawTickets []map[string]any `yaml:"raw_tickets"`
		RawPRs     []map[string]any `yaml:"raw_prs"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 50.0, decoded.Summary.GhostWorkPct)
	assert.Equal(t, 2, decoded.Summary.TotalPRs)
	require.Len(t, decoded.RawTickets, 1)
	assert.Equal(t, "PROJ-1", decoded.RawTickets[0]["key"])
	assert.Nil(t, decoded.RawTickets[0]["resolved_at"])
	assert.Equal(t, "feat: PROJ-1 fix bug", decoded.RawPRs[0]["title"])
}

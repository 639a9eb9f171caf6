package stats

import (
	"fmt"
	"strings"
)

func fmtRate(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f Hz", *v)
}

func fmtSeconds(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f s", *v)
}

// Row is one label/value line of a results table. The display layer owns
// layout; this package only produces the content.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rows returns the stage record as results-table rows.
func (s *StageStats) Rows() []Row {
	result := "None"
	if s.Result != nil {
		result = s.Result.String()
	}
	return []Row{
		{"Final Decision", result},
		{"Number of Fatalities", fmt.Sprintf("%d", s.NumFatalities)},
		{"Number of Lever Pulls", fmt.Sprintf("%d", s.NumDecisions)},
		{"Average Pull Rate", fmtRate(s.AvgDecisionsPerSecond)},
		{"Time Before First Pull", fmtSeconds(s.DurationBeforeFirstDecision)},
		{"Time Remaining at Last Pull", fmtSeconds(s.DurationRemainingAtLastFlip)},
		{"Total Time Used", fmt.Sprintf("%.2f s / %.2f s", s.DecisionTimeUsed, s.DecisionTimeAvailable)},
	}
}

// Rows returns the whole-run summary as results-table rows.
func (g GameSummary) Rows() []Row {
	return []Row{
		{"Total Dilemmas", fmt.Sprintf("%d", g.NumDilemmas)},
		{"Total Fatalities", fmt.Sprintf("%d", g.TotalFatalities)},
		{"Average Fatalities per Dilemma", fmt.Sprintf("%.2f", g.MeanFatalities)},
		{"Total Lever Pulls", fmt.Sprintf("%d", g.TotalDecisions)},
		{"Average Pulls Per Dilemma", fmt.Sprintf("%.2f", g.MeanDecisions)},
		{"Average Pull Rate", fmtRate(g.AvgDecisionsPerSecond)},
		{"Average Time Before First Pull", fmtSeconds(g.AvgDurationBeforeFirstFlip)},
		{"Average Time Remaining at Last Pull", fmtSeconds(g.AvgDurationRemainingAtLast)},
	}
}

func renderRows(rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", r.Label, r.Value)
	}
	return b.String()
}

// Report renders the stage record as the multi-line block shown on the
// results screen.
func (s *StageStats) Report() string { return renderRows(s.Rows()) }

// Report renders the whole-run summary block.
func (g GameSummary) Report() string { return renderRows(g.Rows()) }

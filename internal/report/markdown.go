// Package report renders a run's typed results as a markdown digest.
package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/adoptioncheck/radar/internal/core"
	"github.com/adoptioncheck/radar/internal/pipeline"
	"github.com/adoptioncheck/radar/internal/velocity"
)

const markdownTemplate = `# Technology Adoption Radar

Run {{.RunID}} on {{.Date}}. {{.TechCount}} technologies tracked, {{.MetricCount}} source observations.
{{range .Lists}}
## {{.Title}} watchlist

### Adoption leaders
{{if .Leaders}}{{range $i, $l := .Leaders}}{{inc $i}}. **{{$l.Technology}}** ({{$l.Category}}) {{pct $l.MomentumScore}} per month, {{momentum $l.Momentum}}
{{end}}{{else}}Insufficient history to rank adoption velocity. Rankings appear after a second collection run.
{{end}}
### Hype signals
{{if .Hype}}{{range .Hype}}- **{{.Technology}}**: {{join .Reasons "; "}}{{if .Divergence}} ({{ratio .Divergence.Ratio}} between {{.Divergence.A}} and {{.Divergence.B}}){{end}}
{{end}}{{else}}No divergence-based hype signals this run.
{{end}}
### Category trends
{{if .Trends}}| Category | Technologies | Avg momentum | Range |
|---|---|---|---|
{{range .Trends}}| {{.Category}} | {{.TechnologyCount}} | {{pct .AverageMomentum}} | {{pct .MinMomentum}} to {{pct .MaxMomentum}} |
{{end}}{{else}}Insufficient history for category trends.
{{end}}
### Data quality
| Technology | Confidence | Sources | Divergence | Flags |
|---|---|---|---|---|
{{range .Scored}}| {{.Technology}} | {{.Confidence}} | {{.SourcesPresent}} | {{divergence .Divergence}} | {{flags .}} |
{{end}}{{end}}
## Cross-market comparison

{{.Comparison}}
`

// Render writes the full markdown report for one run result.
func Render(res *pipeline.Result) (string, error) {
	funcs := template.FuncMap{
		"inc":        func(i int) int { return i + 1 },
		"join":       strings.Join,
		"pct":        func(v float64) string { return fmt.Sprintf("%+.1f%%", v) },
		"ratio":      func(v float64) string { return fmt.Sprintf("%.1fx", v) },
		"momentum":   momentumLabel,
		"divergence": divergenceCell,
		"flags":      flagsCell,
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(markdownTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	view := struct {
		RunID       string
		Date        string
		TechCount   int
		MetricCount int
		Lists       []listView
		Comparison  string
	}{
		RunID:       res.RunID,
		Date:        res.StartedAt.Format(time.DateOnly),
		TechCount:   len(res.Records),
		MetricCount: len(res.Metrics),
		Comparison:  comparisonLine(res.Comparison),
	}
	for _, list := range res.Lists {
		view.Lists = append(view.Lists, listView{
			Title:      strings.ToUpper(list.Name[:1]) + list.Name[1:],
			ListResult: list,
		})
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

type listView struct {
	Title string
	pipeline.ListResult
}

func momentumLabel(m velocity.Momentum) string {
	return strings.ReplaceAll(string(m), "_", " ")
}

func divergenceCell(d *core.Divergence) string {
	if d == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1fx", d.Ratio)
}

func flagsCell(rec core.ScoredRecord) string {
	var flags []string
	if rec.HypeFlag {
		flags = append(flags, "hype")
	}
	if !rec.RankEligible {
		flags = append(flags, "excluded from ranking")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ", ")
}

// comparisonLine turns the cross-list verdict into one sentence. A
// neutral state never invents a leader.
func comparisonLine(c velocity.ListComparison) string {
	if c.State != velocity.ComparisonOK {
		return "Insufficient history to compare markets. The comparison appears once both lists have momentum data."
	}
	switch c.Leader {
	case "tied":
		return fmt.Sprintf("Markets show similar maturity: %s averages %+.1f%% monthly momentum, %s averages %+.1f%%.",
			c.LeftList, c.LeftMean, c.RightList, c.RightMean)
	case c.LeftList:
		return fmt.Sprintf("%s adoption is outpacing %s: %+.1f%% vs %+.1f%% average monthly momentum (medians %+.1f%% vs %+.1f%%).",
			strings.ToUpper(c.LeftList[:1])+c.LeftList[1:], c.RightList, c.LeftMean, c.RightMean, c.LeftMedian, c.RightMedian)
	default:
		return fmt.Sprintf("%s adoption is outpacing %s: %+.1f%% vs %+.1f%% average monthly momentum (medians %+.1f%% vs %+.1f%%).",
			strings.ToUpper(c.RightList[:1])+c.RightList[1:], c.LeftList, c.RightMean, c.LeftMean, c.RightMedian, c.LeftMedian)
	}
}

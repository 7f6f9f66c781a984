package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"tradebattle/internal/store"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteMatchReport renders a finished session as a standalone HTML chart
// page and returns the written path.
func WriteMatchReport(record store.SessionRecord, outputDir string) (string, error) {
	if len(record.RoundResults) == 0 {
		return "", fmt.Errorf("session %s has no round results to report", record.SessionID)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	rounds := make([]string, 0, len(record.RoundResults))
	humanVals := make([]opts.LineData, 0, len(record.RoundResults))
	aiVals := make([]opts.LineData, 0, len(record.RoundResults))
	for _, res := range record.RoundResults {
		rounds = append(rounds, fmt.Sprintf("R%d", res.Round))
		hv, _ := res.HumanValue.Float64()
		av, _ := res.AIValue.Float64()
		humanVals = append(humanVals, opts.LineData{Value: hv})
		aiVals = append(aiVals, opts.LineData{Value: av})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Final value per round",
			Subtitle: fmt.Sprintf("winner: %s (%d-%d)", record.Winner, record.HumanWins, record.AIWins),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(rounds).
		AddSeries("human", humanVals).
		AddSeries("ai", aiVals)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Round wins"}))
	bar.SetXAxis([]string{"human", "ai"}).
		AddSeries("wins", []opts.BarData{
			{Value: record.HumanWins},
			{Value: record.AIWins},
		})

	page := components.NewPage()
	page.AddCharts(line, bar)

	path := filepath.Join(outputDir, fmt.Sprintf("match-%s.html", record.SessionID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return "", err
	}
	return path, nil
}

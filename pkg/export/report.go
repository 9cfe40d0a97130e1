package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/trikesim/core/metrics"
)

// WriteReport renders an HTML line chart of passenger states and active
// tricycles per tick.
func WriteReport(w io.Writer, runID string, timeline []metrics.TickStats) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Run " + runID, Subtitle: "passenger states over time"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	xAxis := make([]string, 0, len(timeline))
	series := map[string][]opts.LineData{}
	names := []string{"waiting", "enqueued", "onboard", "completed", "active tricycles"}
	for _, ts := range timeline {
		xAxis = append(xAxis, strconv.FormatInt(ts.Time, 10))
		values := []int{ts.Waiting, ts.Enqueued, ts.Onboard, ts.Completed, ts.ActiveTricycles}
		for i, n := range names {
			series[n] = append(series[n], opts.LineData{Value: values[i]})
		}
	}

	line.SetXAxis(xAxis)
	for _, n := range names {
		line.AddSeries(n, series[n])
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

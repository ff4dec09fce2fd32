// Package gallery renders a static HTML report of a mining run's records
// and analyses via go-echarts: a score-ranked table, a Pareto front
// scatter, a MAP-Elites grid heatmap, an LOF/novelty scatter, and an
// optional per-day KPI sparkline (original_source/src/isocity/
// MineGallery.hpp, MineTraces.hpp).
package gallery

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/procisocity/seedminer/pkg/mining"
)

// Options configures a gallery report.
type Options struct {
	Title       string
	TopK        int
	ParetoX     mining.Metric
	ParetoY     mining.Metric
	Pareto      *mining.ParetoResult
	MapElites   *mining.MapElitesResult
	Outliers    *mining.OutlierResult

	// TraceMetrics, when non-empty, renders a per-day sparkline for the
	// best-scoring record that carries a trace (original_source
	// MineTraces.hpp). Metrics missing from that record's trace are left
	// out of the chart.
	TraceMetrics []mining.TraceMetric
}

// Render writes a self-contained HTML report to w.
func Render(w io.Writer, records []mining.MineRecord, opt Options) error {
	page := components.NewPage()
	page.PageTitle = opt.Title
	if page.PageTitle == "" {
		page.PageTitle = "ProcIsoCity Mining Report"
	}

	page.AddCharts(rankedTable(records, opt.TopK))

	if opt.Pareto != nil {
		page.AddCharts(paretoScatter(records, *opt.Pareto, opt.ParetoX, opt.ParetoY))
	}
	if opt.MapElites != nil {
		page.AddCharts(mapElitesHeatmap(records, *opt.MapElites))
	}
	if opt.Outliers != nil {
		page.AddCharts(outlierScatter(records, *opt.Outliers))
	}
	if len(opt.TraceMetrics) > 0 {
		if line := traceLines(records, opt.TraceMetrics); line != nil {
			page.AddCharts(line)
		}
	}

	return page.Render(w)
}

// rankedTable renders a bar chart of the top-K records by score (go-echarts
// has no native table component; a bar chart with the seeds along the x
// axis in rank order reads the same way a score-ranked table would, one
// bar per seed).
func rankedTable(records []mining.MineRecord, topK int) *charts.Bar {
	ranked := append([]mining.MineRecord(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Seed < ranked[j].Seed
	})
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}

	labels := make([]string, len(ranked))
	data := make([]opts.BarData, len(ranked))
	for i, r := range ranked {
		labels[i] = fmt.Sprintf("0x%016x", r.Seed)
		data[i] = opts.BarData{Value: r.Score}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Top-Ranked Seeds", Subtitle: fmt.Sprintf("%d of %d records", len(ranked), len(records))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
	)
	bar.SetXAxis(labels).AddSeries("score", data)
	return bar
}

func paretoScatter(records []mining.MineRecord, pareto mining.ParetoResult, xMetric, yMetric mining.Metric) *charts.Scatter {
	data := make([]opts.ScatterData, len(records))
	for i, r := range records {
		rank := 0
		if i < len(pareto.Rank) {
			rank = pareto.Rank[i]
		}
		data[i] = opts.ScatterData{Value: []interface{}{xMetric.Value(r), yMetric.Value(r), rank}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pareto Front", Subtitle: fmt.Sprintf("%s vs %s (color = front rank)", xMetric.Name(), yMetric.Name())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xMetric.Name()}),
		charts.WithYAxisOpts(opts.YAxis{Name: yMetric.Name()}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show: opts.Bool(true), Calculable: opts.Bool(true), Dimension: "2",
			InRange: &opts.VisualMapInRange{Color: []string{"#fde725", "#35b779", "#31688e", "#440154"}},
		}),
	)
	scatter.AddSeries("records", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}

func mapElitesHeatmap(records []mining.MineRecord, result mining.MapElitesResult) *charts.HeatMap {
	xBins, yBins := result.ResolvedX.Bins, result.ResolvedY.Bins
	data := make([]opts.HeatMapData, 0, xBins*yBins)
	for by := 0; by < yBins; by++ {
		for bx := 0; bx < xBins; bx++ {
			cell := result.Grid[by*xBins+bx]
			q := 0.0
			if cell != -1 {
				q = mining.QualityScore(records[cell], result.Cfg)
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{bx, by, q}})
		}
	}

	xLabels := make([]string, xBins)
	for i := range xLabels {
		xLabels[i] = fmt.Sprintf("%d", i)
	}
	yLabels := make([]string, yBins)
	for i := range yLabels {
		yLabels[i] = fmt.Sprintf("%d", i)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "MAP-Elites Grid", Subtitle: fmt.Sprintf("coverage=%.2f%% qd=%.2f", result.Coverage*100, result.QDScore)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: result.Cfg.X.Metric.Name()}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: result.Cfg.Y.Metric.Name()}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show: opts.Bool(true), Calculable: opts.Bool(true),
			InRange: &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	hm.SetXAxis(xLabels).SetYAxis(yLabels).AddSeries("quality", data)
	return hm
}

func outlierScatter(records []mining.MineRecord, outliers mining.OutlierResult) *charts.Scatter {
	data := make([]opts.ScatterData, len(records))
	for i, r := range records {
		lof, novelty := 0.0, 0.0
		if i < len(outliers.Lof) {
			lof = outliers.Lof[i]
		}
		if i < len(outliers.Novelty) {
			novelty = outliers.Novelty[i]
		}
		data[i] = opts.ScatterData{Value: []interface{}{novelty, lof, r.Score}}
		_ = r
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Outlier / Novelty", Subtitle: "novelty vs local outlier factor (color = score)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "novelty"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "LOF"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show: opts.Bool(true), Calculable: opts.Bool(true), Dimension: "2",
			InRange: &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("records", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}

// traceLines renders the per-day KPI history of the best-scoring record
// carrying a trace, one line per requested metric (original_source
// MineTraces.hpp, meant to back gallery sparklines). Metrics missing from
// that record's trace are skipped. Returns nil if no record carries a
// trace.
func traceLines(records []mining.MineRecord, metrics []mining.TraceMetric) *charts.Line {
	var best *mining.MineRecord
	for i := range records {
		r := &records[i]
		if r.Traces == nil {
			continue
		}
		if best == nil || r.Score > best.Score {
			best = r
		}
	}
	if best == nil {
		return nil
	}

	var days int
	for _, m := range metrics {
		if s := best.Traces.Series[m]; len(s) > days {
			days = len(s)
		}
	}
	xAxis := make([]string, days)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i+1)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Best Seed KPI Trace", Subtitle: fmt.Sprintf("seed 0x%016x over %d days", best.Seed, days)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "day"}),
	)
	line.SetXAxis(xAxis)
	for _, m := range metrics {
		series, ok := best.Traces.Series[m]
		if !ok {
			continue
		}
		data := make([]opts.LineData, len(series))
		for i, v := range series {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(m.Name(), data)
	}
	return line
}

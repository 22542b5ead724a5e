package metrics

import (
	"fmt"
	"time"
)

// Metric names.
const (
	ImportsTotal          = "imports_total"
	ImportedFindingsTotal = "imported_findings_total"
	SkippedFindingsTotal  = "skipped_findings_total"
	ReportsTotal          = "reports_total"
	RenderDuration        = "render_duration_seconds"
)

// Recorder records import and report metrics on a Collector.
type Recorder struct {
	collector Collector
}

// NewRecorder registers the import and report metrics on collector.
func NewRecorder(collector Collector) (*Recorder, error) {
	counters := []struct {
		name, help string
		labels     []string
	}{
		{ImportsTotal, "Number of completed scanner imports.", []string{"tool"}},
		{ImportedFindingsTotal, "Number of findings persisted by imports.", []string{"tool"}},
		{SkippedFindingsTotal, "Number of imported findings skipped as duplicates.", []string{"tool"}},
		{ReportsTotal, "Number of generated reports.", []string{"type", "mode"}},
	}
	for _, c := range counters {
		if err := collector.RegisterCounter(c.name, c.help, c.labels...); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	if err := collector.RegisterHistogram(RenderDuration, "Time spent rendering reports.", nil, "type"); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return &Recorder{collector: collector}, nil
}

// ImportCompleted records one finished import.
func (r *Recorder) ImportCompleted(tool string, imported, skipped int) {
	_ = r.collector.AddCounter(ImportsTotal, 1, tool)
	_ = r.collector.AddCounter(ImportedFindingsTotal, float64(imported), tool)
	_ = r.collector.AddCounter(SkippedFindingsTotal, float64(skipped), tool)
}

// ReportRendered records one generated report. mode is "rendered" or "passthrough".
func (r *Recorder) ReportRendered(reportType, mode string, elapsed time.Duration) {
	_ = r.collector.AddCounter(ReportsTotal, 1, reportType, mode)
	_ = r.collector.ObserveHistogram(RenderDuration, elapsed.Seconds(), reportType)
}

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "shell_packager"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.GaugeVec
	stageResults  *prom.CounterVec
	buildDuration prom.Gauge
	buildOutcome  *prom.CounterVec
	lastRun       prom.Gauge
}

// NewPrometheusRecorder registers the packaging metrics in a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prom.NewRegistry(),
		stageDuration: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in the last run",
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage results by outcome",
		}, []string{"stage", "result"}),
		buildDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total duration of the last run",
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	p.registry.MustRegister(p.stageDuration, p.stageResults, p.buildDuration, p.buildOutcome, p.lastRun)

	return p
}

// ObserveStageDuration sets the stage's duration in the last run.
func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// IncStageResult counts one stage outcome.
func (p *PrometheusRecorder) IncStageResult(stage, result string) {
	p.stageResults.WithLabelValues(stage, result).Inc()
}

// ObserveBuildDuration sets the total duration of the last run.
func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Set(d.Seconds())
}

// IncBuildOutcome counts the run outcome and stamps the finish time.
func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
	p.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// WriteTextfile writes the current metrics to path atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}

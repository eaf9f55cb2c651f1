// Package metrics records stage and build timings.
//
// Components receive a Recorder; NoopRecorder is the default. The
// PrometheusRecorder keeps its own registry and writes it in the text
// exposition format to a file, which node_exporter's textfile collector on a
// build host can pick up after each run.
package metrics

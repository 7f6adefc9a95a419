package promadapters_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/steplog-go/frame"
	"github.com/AntonStoeckl/steplog-go/steplog"
	"github.com/AntonStoeckl/steplog-go/steplog/promadapters"
)

func Test_MetricsCollector_RecordsAllKinds(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := steplog.BuildStepLabels("removeOutliers", steplog.StatusSuccess)

	// act
	collector.RecordDuration(steplog.StepDurationMetric, 150*time.Millisecond, labels)
	collector.IncrementCounter(steplog.StepCallsMetric, labels)
	collector.IncrementCounter(steplog.StepCallsMetric, labels)
	collector.RecordValue(steplog.StepOutputRowsMetric, 519, map[string]string{steplog.LogAttrStep: "removeOutliers"})

	// assert
	count, err := testutil.GatherAndCount(registry, steplog.StepDurationMetric, steplog.StepCallsMetric, steplog.StepOutputRowsMetric)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	expected := `
# HELP steplog_step_calls_total Number of step calls.
# TYPE steplog_step_calls_total counter
steplog_step_calls_total{status="success",step="removeOutliers"} 2
# HELP steplog_step_output_rows Latest value reported by a step.
# TYPE steplog_step_output_rows gauge
steplog_step_output_rows{step="removeOutliers"} 519
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		steplog.StepCallsMetric, steplog.StepOutputRowsMetric))
}

func Test_MetricsCollector_LabelMismatch_IsReported(t *testing.T) {
	// arrange
	var reported []error
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry,
		promadapters.WithErrorHandler(func(err error) { reported = append(reported, err) }),
	)

	// act
	collector.IncrementCounter("calls_total", map[string]string{"step": "a"})
	collector.IncrementCounter("calls_total", map[string]string{"other": "b"})
	collector.IncrementCounter("calls_total", map[string]string{"step": "a", "status": "x"})

	// assert
	require.Len(t, reported, 2)
	assert.ErrorIs(t, reported[0], promadapters.ErrLabelMismatch)
	assert.ErrorIs(t, reported[1], promadapters.ErrLabelMismatch)
}

func Test_MetricsCollector_SharedRegistry(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)
	labels := steplog.BuildStepLabels("s", steplog.StatusSuccess)

	// act
	first.IncrementCounter(steplog.StepCallsMetric, labels)
	second.IncrementCounter(steplog.StepCallsMetric, labels)

	// assert
	expected := `
# HELP steplog_step_calls_total Number of step calls.
# TYPE steplog_step_calls_total counter
steplog_step_calls_total{status="success",step="s"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), steplog.StepCallsMetric))
}

func Test_MetricsCollector_WithLogStep_AndHandler(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithBuckets([]float64{0.001, 0.1, 1}))

	// arrange
	in := frame.MustNew(frame.Series{Name: "x", DType: frame.Bool, Values: []any{true, false, true}})
	step := steplog.MustLogFunc(func(f *frame.Frame) *frame.Frame { return f.Head(2) },
		steplog.WithName("head"),
		steplog.WithLevel(slog.LevelDebug),
		steplog.WithMetrics(collector),
	)

	// act
	_, err := step(context.Background(), in)
	require.NoError(t, err)

	server := httptest.NewServer(promadapters.Handler(registry))
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// assert
	assert.Contains(t, string(body), `steplog_step_calls_total{status="success",step="head"} 1`)
	assert.Contains(t, string(body), `steplog_step_output_rows{step="head"} 2`)
	assert.Contains(t, string(body), `steplog_step_duration_seconds_bucket{status="success",step="head",le="1"} 1`)
}

package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/steplog-go/steplog"
	"github.com/AntonStoeckl/steplog-go/steplog/oteladapters"
)

func givenMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	require.Failf(t, "metric not found", "metric %s", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()

	// act
	collector.RecordDuration(steplog.StepDurationMetric, 150*time.Millisecond,
		steplog.BuildStepLabels("removeOutliers", steplog.StatusSuccess))

	// assert
	m := findMetric(t, collect(t, reader), steplog.StepDurationMetric)
	assert.Equal(t, "s", m.Unit)

	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	step, ok := histogram.DataPoints[0].Attributes.Value(attribute.Key(steplog.LogAttrStep))
	assert.True(t, ok)
	assert.Equal(t, "removeOutliers", step.AsString())
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	labels := steplog.BuildStepLabels("removeOutliers", steplog.StatusError)

	// act
	collector.IncrementCounter(steplog.StepCallsMetric, labels)
	collector.IncrementCounterContext(context.Background(), steplog.StepCallsMetric, labels)

	// assert
	sum, ok := findMetric(t, collect(t, reader), steplog.StepCallsMetric).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	assert.True(t, sum.IsMonotonic)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	labels := map[string]string{steplog.LogAttrStep: "removeOutliers"}

	// act
	collector.RecordValue(steplog.StepOutputRowsMetric, 578, labels)
	collector.RecordValueContext(context.Background(), steplog.StepOutputRowsMetric, 519, labels)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), steplog.StepOutputRowsMetric).Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 519, gauge.DataPoints[0].Value, 0)
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := givenMetricsCollector()
	labels := steplog.BuildStepLabels("s", steplog.StatusSuccess)

	// act
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter(steplog.StepCallsMetric, labels)
		}()
	}
	wg.Wait()

	// assert
	sum, ok := findMetric(t, collect(t, reader), steplog.StepCallsMetric).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(20), sum.DataPoints[0].Value)
}

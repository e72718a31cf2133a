package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewStoreMetrics(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newStoreMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}

	if metrics.ordersFailed == nil {
		t.Error("ordersFailed counter should not be nil")
	}

	if metrics.insufficientStock == nil {
		t.Error("insufficientStock counter should not be nil")
	}

	if metrics.statusTransitions == nil {
		t.Error("statusTransitions counter vec should not be nil")
	}

	if metrics.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}

	if metrics.outboxPublished == nil {
		t.Error("outboxPublished counter should not be nil")
	}

	if metrics.outboxFailed == nil {
		t.Error("outboxFailed counter should not be nil")
	}

	if metrics.outboxPending == nil {
		t.Error("outboxPending gauge should not be nil")
	}
}

func TestNewStoreMetricsIdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newStoreMetricsWithRegisterer(reg)
	second := newStoreMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает уже существующие коллекторы.
	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	metric := &dto.Metric{}
	if err := first.ordersPlaced.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()

	metric := &dto.Metric{}
	if err := metrics.ordersPlaced.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 3.0 {
		t.Errorf("expected counter value 3.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordInsufficientStock(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordInsufficientStock()
	metrics.RecordOrderFailed()

	stockMetric := &dto.Metric{}
	if err := metrics.insufficientStock.Write(stockMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if stockMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", stockMetric.Counter.GetValue())
	}

	failedMetric := &dto.Metric{}
	if err := metrics.ordersFailed.Write(failedMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if failedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", failedMetric.Counter.GetValue())
	}
}

func TestRecordStatusTransition(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordStatusTransition("pending", "processing")
	metrics.RecordStatusTransition("pending", "processing")
	metrics.RecordStatusTransition("processing", "shipped")

	observer, err := metrics.statusTransitions.GetMetricWithLabelValues("pending", "processing")
	if err != nil {
		t.Fatalf("failed to get labeled counter: %v", err)
	}

	metric := &dto.Metric{}
	if err := observer.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordCheckoutDuration(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordCheckoutDuration(100 * time.Millisecond)
	metrics.RecordCheckoutDuration(500 * time.Millisecond)
	metrics.RecordCheckoutDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := metrics.checkoutDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Проверяем примерную сумму (0.1 + 0.5 + 1.0 = 1.6)
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestOutboxMetrics(t *testing.T) {
	metrics := newStoreMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOutboxPublished()
	metrics.RecordOutboxPublished()
	metrics.RecordOutboxFailed()
	metrics.SetOutboxPending(4)

	publishedMetric := &dto.Metric{}
	if err := metrics.outboxPublished.Write(publishedMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if publishedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 published events, got %f", publishedMetric.Counter.GetValue())
	}

	failedMetric := &dto.Metric{}
	if err := metrics.outboxFailed.Write(failedMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if failedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 failed event, got %f", failedMetric.Counter.GetValue())
	}

	pendingMetric := &dto.Metric{}
	if err := metrics.outboxPending.Write(pendingMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if pendingMetric.Gauge.GetValue() != 4.0 {
		t.Errorf("expected 4 pending events, got %f", pendingMetric.Gauge.GetValue())
	}
}

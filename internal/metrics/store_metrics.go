package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики магазина.
type StoreMetrics struct {
	// Счётчики операций
	ordersPlaced      prometheus.Counter
	ordersFailed      prometheus.Counter
	insufficientStock prometheus.Counter
	statusTransitions *prometheus.CounterVec
	outboxPublished   prometheus.Counter
	outboxFailed      prometheus.Counter

	// Гистограммы времени выполнения
	checkoutDuration prometheus.Histogram

	// Gauge для backlog outbox
	outboxPending prometheus.Gauge
}

// NewStoreMetrics создаёт новый экземпляр метрик магазина.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mustore_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mustore_orders_failed_total",
			Help: "Total number of checkout attempts that failed",
		}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mustore_checkout_insufficient_stock_total",
			Help: "Total number of checkout attempts rejected due to insufficient stock",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mustore_order_status_transitions_total",
			Help: "Total number of order status transitions",
		}, []string{"from", "to"}),
		outboxPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mustore_outbox_published_total",
			Help: "Total number of outbox events published",
		}),
		outboxFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mustore_outbox_failed_total",
			Help: "Total number of outbox events that failed to publish",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "mustore_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		outboxPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "mustore_outbox_pending",
			Help: "Number of outbox events waiting to be published",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик оформленных заказов.
func (m *StoreMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderFailed увеличивает счётчик неудачных оформлений.
func (m *StoreMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов из-за нехватки товара.
func (m *StoreMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordStatusTransition увеличивает счётчик переходов статусов заказа.
func (m *StoreMetrics) RecordStatusTransition(from, to string) {
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordCheckoutDuration записывает время оформления заказа.
func (m *StoreMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordOutboxPublished увеличивает счётчик опубликованных событий outbox.
func (m *StoreMetrics) RecordOutboxPublished() {
	m.outboxPublished.Inc()
}

// RecordOutboxFailed увеличивает счётчик неудачных публикаций outbox.
func (m *StoreMetrics) RecordOutboxFailed() {
	m.outboxFailed.Inc()
}

// SetOutboxPending выставляет размер backlog событий outbox.
func (m *StoreMetrics) SetOutboxPending(pending int) {
	m.outboxPending.Set(float64(pending))
}

package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts finalised sales by outcome.
	CheckoutTotal *prometheus.CounterVec
	// ReconcileUnmatchedTotal counts sold lines that matched no inventory record.
	ReconcileUnmatchedTotal prometheus.Counter
	// ReconcileOversellTotal counts decrements that floored stock at zero.
	ReconcileOversellTotal prometheus.Counter
	// LowStockTotal counts low-stock events emitted at checkout.
	LowStockTotal prometheus.Counter
	// MessagesTotal tracks outbound customer message outcomes.
	MessagesTotal *prometheus.CounterVec
	// ScanResolveTotal counts barcode resolutions by result.
	ScanResolveTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by result.",
		}, []string{"result"})
		ReconcileUnmatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_unmatched_total",
			Help:      "Sold lines that could not be matched to an inventory record.",
		})
		ReconcileOversellTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_oversell_total",
			Help:      "Stock decrements floored at zero because demand exceeded stock.",
		})
		LowStockTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_low_stock_total",
			Help:      "Low stock events emitted after checkout decrements.",
		})
		MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Outbound customer message outcomes.",
		}, []string{"kind", "result"})
		ScanResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_resolve_total",
			Help:      "Barcode resolutions by result.",
		}, []string{"result"})

		CheckoutTotal = registerCounterVec(reg, CheckoutTotal)
		MessagesTotal = registerCounterVec(reg, MessagesTotal)
		ScanResolveTotal = registerCounterVec(reg, ScanResolveTotal)
		ReconcileUnmatchedTotal = registerCounter(reg, ReconcileUnmatchedTotal)
		ReconcileOversellTotal = registerCounter(reg, ReconcileOversellTotal)
		LowStockTotal = registerCounter(reg, LowStockTotal)
	})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) prometheus.Counter {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register counter: %w", err))
	}
	return c
}

package refresher

import (
	"sync"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/number"

	"github.com/prometheus/client_golang/prometheus"
)

type reserveMetrics struct {
	utilization *prometheus.GaugeVec
	borrowRate  *prometheus.GaugeVec
	available   *prometheus.GaugeVec
	price       *prometheus.GaugeVec
	refreshed   prometheus.Counter
	failures    prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsRegistry *reserveMetrics
)

func defaultMetrics() *reserveMetrics {
	metricsOnce.Do(func() {
		labels := []string{"reserve", "mint"}
		gauge := func(name, help string) *prometheus.GaugeVec {
			return prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "lending",
				Subsystem: "reserve",
				Name:      name,
				Help:      help,
			}, labels)
		}

		metricsRegistry = &reserveMetrics{
			utilization: gauge("utilization_rate", "Borrowed share of the reserve's total supply."),
			borrowRate:  gauge("borrow_rate", "Current yearly borrow rate of the reserve."),
			available:   gauge("available_amount", "Liquidity available to borrow or redeem, in token units."),
			price:       gauge("market_price", "Oracle price of the reserve's liquidity in quote currency."),
			refreshed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "lending",
				Subsystem: "refresher",
				Name:      "refreshed_total",
				Help:      "Total reserves refreshed by the refresher worker.",
			}),
			failures: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "lending",
				Subsystem: "refresher",
				Name:      "failures_total",
				Help:      "Total reserve refreshes that failed.",
			}),
		}

		prometheus.MustRegister(
			metricsRegistry.utilization,
			metricsRegistry.borrowRate,
			metricsRegistry.available,
			metricsRegistry.price,
			metricsRegistry.refreshed,
			metricsRegistry.failures,
		)
	})

	return metricsRegistry
}

func float(d number.Decimal) float64 {
	return d.Shopspring().InexactFloat64()
}

// observe publish the state of a refreshed reserve
func (m *reserveMetrics) observe(r *core.Reserve) error {
	utilization, err := compound.UtilizationRate(&r.Liquidity)
	if err != nil {
		return err
	}

	rate, err := compound.CurrentBorrowRate(r)
	if err != nil {
		return err
	}

	labels := prometheus.Labels{"reserve": r.ID, "mint": r.Liquidity.MintID}
	m.utilization.With(labels).Set(float(utilization))
	m.borrowRate.With(labels).Set(float(rate))
	m.available.With(labels).Set(float64(r.Liquidity.AvailableAmount))
	m.price.With(labels).Set(float(r.Liquidity.MarketPrice))
	m.refreshed.Inc()
	return nil
}

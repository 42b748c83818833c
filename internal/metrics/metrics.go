package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SalesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_sales_created_total",
		Help: "Committed sale records.",
	})
	SaleUnits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_sale_units_total",
		Help: "Units sold across all committed sales.",
	})
	SaleRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_sale_revenue_total",
		Help: "Sum of committed sale totals.",
	})
	SalesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sales_rejected_total",
		Help: "Sale attempts rejected before commit, by reason.",
	}, []string{"reason"})
)

func ObserveSale(items, total int64) {
	SalesCreated.Inc()
	SaleUnits.Add(float64(items))
	SaleRevenue.Add(float64(total))
}

func ObserveRejected(reason string) {
	SalesRejected.WithLabelValues(reason).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

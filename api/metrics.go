package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry        *prometheus.Registry
	dataRequests    *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		dataRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reddit_insights_data_requests_total",
			Help: "GET /data requests by outcome",
		}, []string{"status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reddit_insights_refreshes_total",
			Help: "Refresh cycles by outcome",
		}, []string{"status"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reddit_insights_refresh_duration_seconds",
			Help:    "Duration of refresh cycles",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
	m.registry.MustRegister(m.dataRequests, m.refreshes, m.refreshDuration)
	return m
}

func (m *metrics) observeRefresh(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.refreshes.WithLabelValues(status).Inc()
	m.refreshDuration.Observe(d.Seconds())
}

// RegisterMetricsRoutes exposes the server's registry at /metrics
func RegisterMetricsRoutes(r *gin.Engine, s *Server) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
}

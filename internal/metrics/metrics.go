package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Civica/internal/calc/session"
)

// Metrics holds the collectors of one registry so tests can use a private one.
type Metrics struct {
	Recomputations *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	OpenSessions   prometheus.GaugeFunc
	handler        http.Handler
}

// New registers the collectors on reg. openSessions reports the live session count.
func New(reg *prometheus.Registry, openSessions func() int) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		Recomputations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civica_recomputations_total",
			Help: "Session recomputations by calculator and resulting state",
		}, []string{"calculator", "state"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civica_http_request_duration_seconds",
			Help:    "Latency of API requests by route template",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		OpenSessions: f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "civica_open_sessions",
			Help: "Calculator sessions currently held by the server",
		}, func() float64 { return float64(openSessions()) }),
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	return m
}

// Observer counts session recomputations.
func (m *Metrics) Observer() session.Observer {
	return func(calculator string, state session.State) {
		m.Recomputations.WithLabelValues(calculator, string(state)).Inc()
	}
}

// Middleware times requests, labelled by the mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler { return m.handler }

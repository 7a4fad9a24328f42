package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	invocations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "tempo_invocations_total", Help: "Rate-limited function invocations by edge"}, []string{"edge"})
	aborts      = prometheus.NewCounter(prometheus.CounterOpts{Name: "tempo_rate_limiter_aborts_total", Help: "Rate limiter aborts"})
	cacheHits   = prometheus.NewCounter(prometheus.CounterOpts{Name: "tempo_cache_hits_total", Help: "Load cache hits"})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "tempo_cache_misses_total", Help: "Load cache misses"})
	coalesced   = prometheus.NewCounter(prometheus.CounterOpts{Name: "tempo_cache_coalesced_total", Help: "Requests coalesced onto an in-flight load"})
	loads       = prometheus.NewCounter(prometheus.CounterOpts{Name: "tempo_cache_loads_total", Help: "Loader invocations"})
	pending     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tempo_cache_pending", Help: "Keys with an in-flight load"})
)

func init() {
	prometheus.MustRegister(invocations, aborts, cacheHits, cacheMisses, coalesced, loads, pending)
}

func Start(addr string) {
	go func() {
		srv := &http.Server{Addr: addr, Handler: promhttp.Handler()}
		srv.ListenAndServe()
	}()
}

func Handler() http.Handler { return promhttp.Handler() }

func IncInvocation(edge string) { invocations.WithLabelValues(edge).Inc() }
func IncAbort()                 { aborts.Inc() }
func IncCacheHit()              { cacheHits.Inc() }
func IncCacheMiss()             { cacheMisses.Inc() }
func IncCoalesced()             { coalesced.Inc() }
func IncLoad()                  { loads.Inc() }
func SetPending(n int)          { pending.Set(float64(n)) }

package main

import (
	"net/http"
	"time"

	"github.com/example/tempo/internal/clock"
	"github.com/example/tempo/internal/config"
	"github.com/example/tempo/internal/limiter"
	"github.com/example/tempo/internal/loadcache"
	"github.com/example/tempo/internal/metrics"
	"github.com/example/tempo/internal/middleware"
	"github.com/example/tempo/internal/sched"
	"github.com/example/tempo/internal/store"
	"github.com/example/tempo/internal/store/redisstore"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.FromEnv()

	logrus.SetLevel(logrus.InfoLevel)

	var st store.Store
	if cfg.RedisAddr != "" {
		st = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.KeyPrefix)
	} else {
		st = store.NewMemoryStore()
	}

	flight := loadcache.NewFlight(st)
	mw := middleware.New(flight)

	// The scheduler core is single-threaded: timer fires and handler
	// events funnel through one channel drained by one goroutine.
	events := make(chan func(), 128)
	go func() {
		for fn := range events {
			fn()
		}
	}()
	scheduler := sched.New(sched.NewSerialTimers(events))

	// Debounced request-activity report: quiet traffic logs once the
	// burst ends, constant traffic still logs every ReportMaxWait.
	requests := 0
	report := limiter.New(limiter.Config{
		Func: func(args any) {
			logrus.WithField("requests", args).Info("request activity")
		},
		Wait:     cfg.ReportWait,
		MaxWait:  cfg.ReportMaxWait,
		Trailing: true,
		Clock:    clock.System{},
		Sched:    scheduler,
	})

	scheduler.Every(time.Minute, func() {
		logrus.WithField("total", requests).Info("minutely request count")
	})

	metrics.Start(cfg.MetricsAddr)

	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(cfg.BackendDelay)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/api/resource", countRequests(events, &requests, report, mw.Handler(backend)))

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logrus.Infof("starting server %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("server failed: %v", err)
	}
}

// countRequests feeds per-request bookkeeping through the scheduler's
// event channel so the single-threaded limiter is never touched from
// more than one goroutine.
func countRequests(events chan<- func(), requests *int, report *limiter.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events <- func() {
			*requests++
			report.Call(*requests)
		}
		next.ServeHTTP(w, r)
	})
}

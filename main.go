package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"Civica/internal/auth"
	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
	"Civica/internal/config"
	"Civica/internal/logger"
	"Civica/internal/metrics"
	"Civica/internal/repo"
	"Civica/internal/server"
)

var wg sync.WaitGroup

func loadLibrary(dataDir string) (*standards.Library, error) {
	if dataDir == "" {
		return standards.Default()
	}
	return standards.Load(os.DirFS(dataDir))
}

func openRepository(ctx context.Context, cfg config.Config, log *logrus.Logger) (repo.Repository, func(), error) {
	var store repo.Repository = repo.NewMemory()
	closers := []func(){}
	if cfg.DatabaseURL != "" {
		db, err := repo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		store = repo.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, users and saved calculations live in memory")
	}
	if cfg.RedisURL != "" {
		client, err := repo.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		store = repo.NewRedisFavorites(store, client, 24*time.Hour)
	}
	return store, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

// sweep drops idle sessions until ctx is done.
func sweep(ctx context.Context, reg *session.Registry, every time.Duration, log *logrus.Logger) {
	defer wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(); n > 0 {
				log.WithField("dropped", n).Debug("idle sessions swept")
			}
		}
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	log := logger.New(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	lib, err := loadLibrary(cfg.DataDir)
	if err != nil {
		log.WithError(err).Fatal("catalog")
	}

	store, closeStore, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage")
	}
	defer closeStore()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var registry *session.Registry
	m := metrics.New(promReg, func() int { return registry.Len() })
	registry = session.NewRegistry(lib, cfg.SessionTTL, session.WithObserver(m.Observer()))

	handler := server.New(server.Deps{
		Registry: registry,
		Repo:     store,
		Auth:     &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Log: log, Secure: cfg.TLS()},
		Limiter:  auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		Metrics:  m,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.SessionTTL > 0 {
		wg.Add(1)
		go sweep(ctx, registry, cfg.SessionTTL/2, log)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "tls": cfg.TLS()}).Info("starting server")
		var err error
		if cfg.TLS() {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	wg.Wait()
	log.Info("server stopped")
}

// Package server wires configuration, storage, domain services and
// the HTTP surface into one runnable unit.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"absensi/internal/db"
	"absensi/internal/domain/attendance"
	"absensi/internal/domain/branch"
	"absensi/internal/domain/reports"
	"absensi/internal/domain/shift"
	"absensi/internal/platform/config"
	"absensi/internal/realtime"
	"absensi/internal/transport/http/handlers/attendance"
	"absensi/internal/transport/http/handlers/auth"
	"absensi/internal/transport/http/handlers/branch"
	"absensi/internal/transport/http/handlers/reports"
	"absensi/internal/transport/http/handlers/shift"
	"absensi/internal/transport/http/middleware"
)

// closeClock is the local wall clock at which open check-ins are
// force-closed each day.
const closeClock = "23:55"

type Server struct {
	Router chi.Router
	Pool   *pgxpool.Pool

	cfg        config.Config
	log        *zap.Logger
	rdb        *redis.Client
	attendance *attendance.Service
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations", cfg.Timezone); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	var rdb *redis.Client
	var rt *realtime.Cache
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		rt = realtime.New(rdb)
	}

	loc := cfg.Location()
	branchStore := branch.NewStore(pool)
	shiftStore := shift.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	attendanceSvc := attendance.NewService(attendanceStore, branchStore, shiftStore, rt, log, loc, attendance.Policy{
		DefaultRadiusM:     cfg.DefaultRadiusM,
		LateToleranceMin:   cfg.LateToleranceMin,
		HalfDayAfterMin:    cfg.HalfDayAfterMin,
		LatePenaltyPoints:  cfg.LatePenaltyPoints,
		LateWarnThreshold:  cfg.LateWarnThreshold,
		OvertimeAfterHours: cfg.OvertimeAfterHours,
	})
	reportsSvc := reports.NewService(reports.NewStore(pool), branchStore, loc)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(chimw.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(pool, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
		branchhandler.NewHandler(branchStore).RegisterRoutes(r)
		shifthandler.NewHandler(shiftStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
	})

	return &Server{
		Router:     router,
		Pool:       pool,
		cfg:        cfg,
		log:        log,
		rdb:        rdb,
		attendance: attendanceSvc,
	}, nil
}

// Run serves HTTP until the context is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	go s.sweepLoop(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	s.Pool.Close()
}

// sweepLoop fires the auto checkout once a day at closeClock.
func (s *Server) sweepLoop(ctx context.Context) {
	loc := s.cfg.Location()
	for {
		now := time.Now().In(loc)
		next := nextCloseInstant(now, loc)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
		if _, err := s.attendance.CloseOpenDays(sweepCtx, time.Now().In(loc)); err != nil {
			s.log.Error("close open days failed", zap.Error(err))
		}
		cancel()
	}
}

func nextCloseInstant(now time.Time, loc *time.Location) time.Time {
	target, _ := time.ParseInLocation("15:04", closeClock, loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), target.Hour(), target.Minute(), 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

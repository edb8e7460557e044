package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"file-storage-service/internal/AWS"
	"file-storage-service/internal/MinIO"
	"file-storage-service/internal/config"
	"file-storage-service/internal/handler"
	"file-storage-service/internal/handler/authHandler"
	"file-storage-service/internal/handler/fileHandler"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/repository"
	"file-storage-service/internal/repository/BlackListRepo"
	"file-storage-service/internal/repository/memoryStore"
	"file-storage-service/internal/repository/pgStore"
	"file-storage-service/internal/service/accessService"
	"file-storage-service/internal/service/authService"
	"file-storage-service/internal/service/fileService"
	"file-storage-service/pkg/database/postgres"
	"file-storage-service/pkg/database/redis"
	"file-storage-service/pkg/logger"
	"file-storage-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

// app holds everything the HTTP router needs.
type app struct {
	files    *fileService.FileService
	auth     *authService.AuthService
	registry *prometheus.Registry
	probes   []handler.Probe
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.close()
		}
	}()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := a.openMetadata(ctx, cfg)
	if err != nil {
		return nil, err
	}
	objects, err := a.openObjects(ctx, cfg)
	if err != nil {
		return nil, err
	}
	blacklist, err := a.openBlacklist(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.files = fileService.New(store, objects, fileService.NewMetrics(a.registry))
	a.auth = authService.New(cfg.JWTSecret, blacklist)
	return a, nil
}

func (a *app) openMetadata(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.MetadataDriver == config.DriverMemory {
		logger.GetLogger(ctx).Warn("metadata is kept in memory and lost on restart")
		return memoryStore.New(), nil
	}

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, cfg.Postgres); err != nil {
			return nil, err
		}
		logger.GetLogger(ctx).Info("migrations applied")
	}
	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	a.probes = append(a.probes, handler.Probe{Name: "postgres", Check: pool.Ping})
	return pgStore.New(pool), nil
}

func (a *app) openObjects(ctx context.Context, cfg *config.Config) (objectStore.ObjectStore, error) {
	var (
		backend objectStore.ObjectStore
		err     error
	)
	switch cfg.ObjectStoreDriver {
	case config.DriverMinIO:
		backend, err = MinIO.New(ctx, cfg.MinIO)
	case config.DriverS3:
		backend, err = AWS.New(ctx, cfg.S3)
	default:
		logger.GetLogger(ctx).Warn("objects are kept in memory and lost on restart")
		backend = objectStore.NewMemory()
	}
	if err != nil {
		return nil, err
	}

	instrumented := objectStore.NewInstrumented(backend, objectStore.NewMetrics(a.registry))
	a.probes = append(a.probes, handler.Probe{Name: "objectstore", Check: instrumented.Ping})
	return instrumented, nil
}

// openBlacklist returns a nil interface when Redis is disabled, which turns
// token revocation off.
func (a *app) openBlacklist(ctx context.Context, cfg *config.Config) (authService.Blacklist, error) {
	if !cfg.Redis.Enabled {
		logger.GetLogger(ctx).Warn("redis is disabled, tokens cannot be revoked")
		return nil, nil
	}
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.probes = append(a.probes, handler.Probe{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}})
	return BlackListRepo.NewBlackListRepo(client), nil
}

func (a *app) router(base *logger.Logger, maxUploadSize int64) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(base))
	r.Use(chimw.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(a.auth))
		fileHandler.NewFileHandler(accessService.New(a.files), maxUploadSize).Routes(r)
		authHandler.New(a.auth).Routes(r)
	})
	return r
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.GetLogger(ctx)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", cfg.HTTPPort),
		Handler: a.router(log, cfg.MaxUploadSize),
	}

	health := handler.NewHealthHandler(cfg.HealthInterval, a.probes...)
	grpcServer := grpc.NewServer()
	health.Register(grpcServer)
	reflection.Register(grpcServer)
	lis, err := net.Listen("tcp", net.JoinHostPort("", cfg.GRPCHealthPort))
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCHealthPort, err)
	}

	errCh := make(chan error, 2)
	go health.Run(ctx)
	go func() {
		log.Info("grpc health server started", zap.String("port", cfg.GRPCHealthPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Info("http server started", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown incomplete", zap.Error(serr))
	}
	grpcServer.GracefulStop()
	log.Info("server stopped")
	return err
}

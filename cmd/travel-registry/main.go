package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/kenkentupal/travel-registry-system/internal/config"
	"github.com/kenkentupal/travel-registry-system/internal/database"
	"github.com/kenkentupal/travel-registry-system/internal/httpapi"
	"github.com/kenkentupal/travel-registry-system/internal/logger"
	"github.com/kenkentupal/travel-registry-system/internal/repository"
	"github.com/kenkentupal/travel-registry-system/internal/service"
	"github.com/kenkentupal/travel-registry-system/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "travel-registry")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	var (
		vehiclesRepo    repository.VehiclesRepo
		assignmentsRepo repository.AssignmentsRepo
		scansRepo       repository.ScanEventsRepo
		directoryRepo   repository.DirectoryRepo
	)

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for travel-registry")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		vehiclesRepo = repository.NewPostgresVehiclesRepo(db)
		assignmentsRepo = repository.NewPostgresAssignmentsRepo(db)
		scansRepo = repository.NewPostgresScanEventsRepo(db)
		directoryRepo = repository.NewPostgresDirectoryRepo(db)
	} else {
		// DB 未就绪：使用内存 repo 支持联测
		memVehicles := repository.NewMemoryVehiclesRepo()
		vehiclesRepo = memVehicles
		assignmentsRepo = repository.NewMemoryAssignmentsRepo(memVehicles)
		scansRepo = repository.NewMemoryScanEventsRepo(memVehicles)
		directoryRepo = repository.NewMemoryDirectoryRepo()
	}

	lifecycle := service.NewLifecycleService(vehiclesRepo, assignmentsRepo, log)
	scans := service.NewScanService(kv, vehiclesRepo, scansRepo, cfg.Scan, log)
	resolve := service.NewResolveService(vehiclesRepo, assignmentsRepo, directoryRepo, log)
	analytics := service.NewAnalyticsService(scansRepo, log)

	m := httpapi.NewAuthMiddleware(cfg.Auth.JWTSecret, log)
	router := httpapi.NewRouter(log)
	router.RegisterVehicleRoutes(httpapi.NewVehiclesHandler(lifecycle, log), m)
	router.RegisterAssignmentRoutes(httpapi.NewAssignmentsHandler(lifecycle, log), m)
	router.RegisterPublicRoutes(httpapi.NewPublicHandler(resolve, scans, log), m)
	router.RegisterAnalyticsRoutes(httpapi.NewAnalyticsHandler(analytics, log), m)

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.WithRequestTimeout(router, cfg.RequestTimeout), log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	// Let in-flight scan writes land before the pool goes away.
	scans.Flush()
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

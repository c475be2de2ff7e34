package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anirudhprmar/pushup-t3/internal/api/handlers"
	"github.com/anirudhprmar/pushup-t3/internal/api/middleware"
	"github.com/anirudhprmar/pushup-t3/internal/api/routes"
	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
	"github.com/anirudhprmar/pushup-t3/internal/domain/task"
	"github.com/anirudhprmar/pushup-t3/internal/domain/user"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/persistence/postgres/connection"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/persistence/postgres/migrations"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/scheduler"
	"github.com/anirudhprmar/pushup-t3/pkg/config"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
	"github.com/anirudhprmar/pushup-t3/pkg/security/auth"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal("failed to load config")
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := connection.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database")
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("failed to run migrations")
	}
	log.Info("database migrations applied")

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; a missing cache degrades reads, not writes.
	redisCache, err := cache.NewRedisCache(&cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, running without cache")
		redisCache = nil
	} else {
		redisCache.StartHealthLoop(rootCtx, 30*time.Second)
		if err := middleware.StartCacheInvalidation(rootCtx, redisCache); err != nil {
			log.Warn("dashboard event subscription failed")
		}
		defer redisCache.Close()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiryHours)

	habitRepo := habit.NewRepository(db)
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)

	habitService := habit.NewService(habitRepo, log)
	userService := user.NewService(userRepo, redisCache, log)
	taskService := task.NewService(taskRepo, habitRepo)

	habitsHandler := handlers.NewHabitsHandler(habitService, redisCache, log)
	tasksHandler := handlers.NewTasksHandler(taskService, redisCache, log)
	usersHandler := handlers.NewUsersHandler(userService, tokens, log)
	healthHandler := handlers.NewHealthHandler(db, redisCache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/cache", healthHandler.Cache)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	usersRoutes := routes.NewUsersRoutes(usersHandler)
	usersRoutes.RegisterPublic(public)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))

	var cached gin.HandlerFunc
	if redisCache != nil {
		cached = middleware.CacheMiddleware(redisCache, 2*time.Minute)
	}

	routes.NewHabitsRoutes(habitsHandler).RegisterRoutes(api, cached)
	routes.NewTasksRoutes(tasksHandler).RegisterRoutes(api, cached)
	usersRoutes.RegisterRoutes(api, cached)

	statsScheduler := scheduler.NewScheduler(db, userRepo, log)
	statsScheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	statsScheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown")
	}
	log.Info("server stopped")
}

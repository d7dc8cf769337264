// Package main runs the hotel dashboard HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hotelsight/backend/config"
	"github.com/hotelsight/backend/internal/admin"
	"github.com/hotelsight/backend/internal/analytics"
	"github.com/hotelsight/backend/internal/auth"
	"github.com/hotelsight/backend/internal/billing"
	"github.com/hotelsight/backend/internal/comparisons"
	"github.com/hotelsight/backend/internal/fnb"
	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/live"
	"github.com/hotelsight/backend/internal/metrics"
	"github.com/hotelsight/backend/internal/middleware"
	"github.com/hotelsight/backend/internal/sales"
	"github.com/hotelsight/backend/pkg/database"
	"github.com/hotelsight/backend/pkg/queue"
	"github.com/hotelsight/backend/pkg/redis"
	"github.com/hotelsight/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	revoker := auth.NewRevoker(rdb.Client)
	redisPubSub := live.NewRedisPubSub(rdb.Client, logger)
	hub := live.NewHub(logger, redisPubSub, redisPubSub)

	// Auth and sessions
	authRepo := auth.NewRepository(pool)
	selectionStore := hotels.NewSelectionStore(rdb.Client)
	sessions := auth.NewSessionManager(revoker, selectionStore)
	authHandler := auth.NewHandler(authRepo, jwtService, sessions, logger)

	// Hotel scope
	hotelRepo := hotels.NewRepository(pool)
	hotelHandler := hotels.NewHandler(hotelRepo, selectionStore, logger)

	// Admin gateway (super-admin re-checked against the DB on every call)
	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, logger)

	// Reporting
	metricRepo := metrics.NewRepository(pool)
	metricHandler := metrics.NewHandler(metricRepo, hub, logger)
	fnbRepo := fnb.NewRepository(pool)
	fnbHandler := fnb.NewHandler(fnbRepo, hub, logger)
	salesRepo := sales.NewRepository(pool)
	salesHandler := sales.NewHandler(salesRepo, logger)
	comparisonRepo := comparisons.NewRepository(pool)
	comparisonHandler := comparisons.NewHandler(comparisonRepo, logger)

	// Billing
	billingRepo := billing.NewRepository(pool)
	billingHandler := billing.NewHandler(billingRepo, logger)

	// Analytics (async insight jobs handled by cmd/worker)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	resultStore := analytics.NewResultStore(rdb.Client, time.Duration(cfg.Analytics.ResultTTLMinutes)*time.Minute)
	analyticsHandler := analytics.NewHandler(metricRepo, selectionStore, hotelRepo, jobQueue, resultStore, logger)

	jwtValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		revoked, err := revoker.IsRevoked(context.Background(), claims.ID)
		if err != nil {
			return uuid.Nil, err
		}
		if revoked {
			return uuid.Nil, auth.ErrInvalidToken
		}
		return claims.UserID, nil
	}
	wsAccess := func(ctx context.Context, userID, hotelID uuid.UUID) (bool, error) {
		return hotelRepo.HasAccess(ctx, hotelID, userID)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required, revoked tokens rejected)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService, revoker))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)
		api.PATCH("/auth/me", authHandler.UpdateMe)

		// Hotel scope: visible set and active selection
		api.GET("/hotels", hotelHandler.List)
		api.GET("/hotels/selection", hotelHandler.GetSelection)
		api.PUT("/hotels/selection", hotelHandler.Select)

		// Per-hotel reporting (membership or super-admin enforced per request)
		hotelScoped := api.Group("/hotels/:id")
		hotelScoped.Use(hotels.RequireHotelAccess(hotelRepo))
		{
			hotelScoped.GET("", hotelHandler.Get)
			hotelScoped.GET("/metrics", metricHandler.List)
			hotelScoped.GET("/metrics/summary", metricHandler.GetSummary)
			hotelScoped.GET("/fnb", fnbHandler.List)
			hotelScoped.GET("/sales-channels", salesHandler.List)
			hotelScoped.GET("/comparisons", comparisonHandler.List)
			hotelScoped.GET("/analytics", analyticsHandler.GetSummary)
		}

		// Async analysis over the active selection
		api.POST("/analytics/query", analyticsHandler.Query)
		api.GET("/analytics/results/:id", analyticsHandler.GetResult)

		// Billing (always scoped to the caller)
		api.GET("/billing/methods", billingHandler.ListMethods)
		api.POST("/billing/methods", billingHandler.CreateMethod)
		api.DELETE("/billing/methods/:id", billingHandler.DeleteMethod)
		api.POST("/billing/methods/:id/default", billingHandler.SetDefault)
		api.GET("/billing/invoices", billingHandler.ListInvoices)

		// Admin gateway: every route re-resolves the caller's role in the DB
		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.RequireSuperAdmin(authRepo))
		{
			adminGroup.GET("/overview", adminHandler.GetOverview)
			adminGroup.GET("/hotels", adminHandler.ListHotels)
			adminGroup.POST("/hotels", adminHandler.CreateHotel)
			adminGroup.DELETE("/hotels/:id", adminHandler.DeleteHotel)
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.POST("/memberships", adminHandler.AssignMembership)
			adminGroup.DELETE("/memberships/:id", adminHandler.RemoveMembership)

			// Data entry
			adminGroup.PUT("/hotels/:id/metrics", metricHandler.Upsert)
			adminGroup.PUT("/hotels/:id/fnb", fnbHandler.Upsert)
			adminGroup.PUT("/hotels/:id/sales-channels", salesHandler.Replace)
			adminGroup.POST("/hotels/:id/comparisons", comparisonHandler.Create)
		}
	}

	// WebSocket (token in query; no Authorization header available)
	router.GET("/ws", live.ServeWs(hub, logger, jwtValidate, wsAccess))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyoa-maker/internal/config"
	"cyoa-maker/internal/handler"
	"cyoa-maker/internal/project"
	"cyoa-maker/internal/sandbox"
	"cyoa-maker/internal/service"
	sharedLogger "cyoa-maker/shared/logger"
	sharedMiddleware "cyoa-maker/shared/middleware"
	"cyoa-maker/shared/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Service:     "cyoa-editor",
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	repo, err := project.NewFileRepository(cfg.ProjectsDir, logger)
	if err != nil {
		zap.L().Fatal("Failed to create project repository", zap.Error(err))
	}
	engine := sandbox.New(cfg.SandboxOptions(), logger)
	defer engine.Close()
	editorSvc := service.NewEditorService(repo, engine, logger)

	if cfg.ProjectFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := editorSvc.LoadProject(ctx, cfg.ProjectFile)
		cancel()
		if err != nil {
			zap.L().Fatal("Failed to load project", zap.String("project", cfg.ProjectFile), zap.Error(err))
		}
		zap.L().Info("Project loaded", zap.String("project", cfg.ProjectFile))
	} else {
		p := editorSvc.NewProject(models.Metadata{})
		zap.L().Info("Started with an empty project", zap.String("start", p.Metadata.Start))
	}

	editorHandler := handler.NewEditorHandler(editorSvc, logger)

	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(sharedMiddleware.ZapLoggingMiddlewareForGin(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", sharedMiddleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	editorHandler.RegisterRoutes(router)

	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-thread/backend/internal/blob"
	"github.com/anonto42/nano-thread/backend/internal/router"
	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/anonto42/nano-thread/backend/pkg/config"
	"github.com/anonto42/nano-thread/backend/pkg/firebase"
	"github.com/anonto42/nano-thread/backend/pkg/logger"
	"github.com/anonto42/nano-thread/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.UsesDefaultJWTSecret() {
		zlog.Warn("JWT_SECRET is not set; signing tokens with the built-in development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Firebase is optional: without credentials only local login is available
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		zlog.Info("Firebase initialized")
	}

	blobs, err := openBlobStore(ctx, cfg, db, firebaseApp)
	if err != nil {
		zlog.Fatal("Failed to open blob storage", zap.Error(err))
	}
	zlog.Info("Blob storage ready", zap.String("backend", cfg.BlobBackend))

	var verifier services.IDTokenVerifier
	if firebaseApp != nil {
		verifier = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	config.SetupMiddleware(e, zlog)

	// Setup routes and dependencies
	flush, err := router.SetupRoutes(e, router.Dependencies{
		DB:       db.Postgres,
		Blobs:    blobs,
		Verifier: verifier,
		Config:   cfg,
		Log:      zlog,
	})
	if err != nil {
		zlog.Fatal("Failed to set up routes", zap.Error(err))
	}

	go metrics.Serve(ctx, ":"+cfg.MetricsPort, zlog)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	flush()
}

// openBlobStore selects the avatar storage backend from BLOB_BACKEND.
func openBlobStore(ctx context.Context, cfg *config.Config, db *config.DB, app *firebase.App) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "local", "":
		return blob.NewLocalStore(cfg.UploadDir)
	case "gcs":
		if app == nil {
			return nil, errors.New("BLOB_BACKEND=gcs requires FIREBASE_CREDENTIALS_PATH")
		}
		bucket, err := app.Bucket(ctx)
		if err != nil {
			return nil, err
		}
		return blob.NewGCSStore(bucket), nil
	case "gridfs":
		if db.Mongo == nil {
			return nil, errors.New("BLOB_BACKEND=gridfs requires MONGO_URI")
		}
		return blob.NewGridFSStore(db.Mongo.Database(cfg.MongoDatabase), "avatars")
	case "memory":
		return blob.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
}

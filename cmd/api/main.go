package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docufix/api/internal/app"
	"docufix/api/internal/artifact"
	"docufix/api/internal/config"
	"docufix/api/internal/editsession"
	"docufix/api/internal/search"
	"docufix/api/internal/store"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("environment loaded from .env")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	var artifacts artifact.Store
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		minioStore, err := artifact.NewMinioStore(artifact.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("minio connection failed: %v", err)
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			log.Fatalf("minio bucket setup failed: %v", err)
		}
		log.Printf("Using MinIO for artifact storage")
		artifacts = minioStore
	} else {
		localStore, err := artifact.NewLocalStore(cfg.ArtifactsDir)
		if err != nil {
			log.Fatalf("artifact dir setup failed: %v", err)
		}
		log.Printf("Using local filesystem for artifact storage at %s", cfg.ArtifactsDir)
		artifacts = localStore
	}

	leases, err := editsession.NewRedisStore(cfg.RedisURL, cfg.EditLeaseTTL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer leases.Close()

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
	}
	searchService.ReindexAllFromPG(ctx)

	service := app.New(cfg, dataStore, artifacts, leases, searchService)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("DocuFix API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

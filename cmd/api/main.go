//	@title			Stashd File Gateway API
//	@version		1.0
//	@description	Read/write gateway in front of an S3-compatible object store: browse prefixes as folders, download through presigned links, upload via streamed multipart uploads.
//
//	@host		localhost:3001
//	@BasePath	/api

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/stashd/gateway/internal/browse"
	"github.com/stashd/gateway/internal/cache"
	"github.com/stashd/gateway/internal/config"
	"github.com/stashd/gateway/internal/download"
	"github.com/stashd/gateway/internal/frontend"
	appMiddleware "github.com/stashd/gateway/internal/middleware"
	"github.com/stashd/gateway/internal/storage"
	"github.com/stashd/gateway/internal/upload"

	_ "github.com/stashd/gateway/docs/swagger"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStore(storage.MinioOptions{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UseSSL:       cfg.S3UseSSL,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	log.Printf("serving bucket %q at %s", cfg.S3Bucket, cfg.S3Endpoint)

	var listingCache cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis init failed: %v", err)
		}
		defer redisCache.Close()
		listingCache = redisCache
		log.Println("listing cache enabled (redis)")
	} else {
		log.Println("REDIS_URL is not set, listing cache disabled")
	}

	log.Printf("api url: %s", cfg.APIURL)
	if cfg.APIURL == config.DefaultAPIURL && cfg.IsProduction() {
		log.Println("warning: API_URL is not set; download links will point at localhost")
	}

	// Wire dependencies: store/cache → service → handler
	browseSvc, err := browse.NewService(store, listingCache, cfg.APIURL, cfg.ListObjectsLimit)
	if err != nil {
		log.Fatalf("invalid API_URL: %v", err)
	}
	browseHandler := browse.NewHandler(browseSvc)
	downloadHandler := download.NewHandler(download.NewService(store))
	uploadHandler := upload.NewHandler(upload.NewService(store, listingCache))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:3001/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Get("/view/*", browseHandler.View)
		r.Get("/download/*", downloadHandler.Download)
		r.Put("/upload/*", uploadHandler.Upload)
	})

	if cfg.FrontendPath != "" {
		log.Printf("serving frontend from %s", cfg.FrontendPath)
		r.NotFound(frontend.Handler(cfg.FrontendPath).ServeHTTP)
	}

	// No ReadTimeout/WriteTimeout: uploads and downloads of large objects
	// are long-lived by design. IdleTimeout still reaps dead keep-alives.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

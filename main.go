package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pod-catalog/internal/auth"
	"pod-catalog/internal/catalog"
	"pod-catalog/internal/config"
	"pod-catalog/internal/db"
	"pod-catalog/internal/featureflags"
	mw "pod-catalog/internal/http/middleware"
	"pod-catalog/internal/logger"
)

func main() {
	cfg := config.Load()

	// 1) DB init
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = db.Disconnect(shutdownCtx)
	}()

	// 2) Feature flags init (non-fatal)
	if err := featureflags.Init(ctx, cfg.RolloutAPIKey); err != nil {
		log.Printf("feature flags init warning: %v", err)
	} else {
		log.Printf("feature flags ready: offline=%v, logLevel=%s",
			featureflags.Values().Offline.IsEnabled(nil),
			featureflags.Values().LogLevel.GetValue(nil))
	}
	defer featureflags.Shutdown()

	// 2a) Initialize levelled logger from flag & watch for flips
	logger.Init(featureflags.Values().LogLevel.GetValue(nil))
	logger.Infof("log level set to %s", logger.GetLevel())

	go func() {
		prev := featureflags.Values().LogLevel.GetValue(nil)
		for {
			time.Sleep(5 * time.Second)
			cur := featureflags.Values().LogLevel.GetValue(nil)
			if cur != prev {
				logger.SetLevel(cur)
				logger.Infof("log level changed to %s", logger.GetLevel())
				prev = cur
			}
		}
	}()

	// 3) Auth + catalog store, index setup runs unconditionally
	auth.Init(cfg.JWTSecret)
	store := catalog.NewStore(client.Database(cfg.MongoDatabase))
	store.EnsureIndexes(ctx)

	// 4) Router
	r := mux.NewRouter()

	// 4a) Offline kill-switch middleware (placed immediately after router creation)
	offlineGate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// always allow health checks
			if r.URL.Path == "/health" || r.URL.Path == "/ready" || r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}
			// block all other requests when Offline flag is ON
			if featureflags.Values().Offline.IsEnabled(nil) {
				http.Error(w, "service temporarily offline", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	r.Use(offlineGate)

	// 4b) Request logger (skip noisy health endpoints)
	r.Use(mw.LogRequests(mw.WithSkips("/health", "/ready", "/api/health")))

	// 5) Health endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, req *http.Request) {
		if status := store.Health(req.Context()); status.Status != "ok" {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	// 6) Inspect current flag values
	r.HandleFunc("/_flags", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"offline":  featureflags.Values().Offline.IsEnabled(nil),
			"logLevel": featureflags.Values().LogLevel.GetValue(nil),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	// 7) Product catalog endpoints
	catalogHandler := catalog.NewHandler(store)

	r.HandleFunc("/api/health", catalogHandler.HealthCheck).Methods(http.MethodGet)

	// Public read endpoints (no authentication required)
	r.HandleFunc("/api/products", catalogHandler.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", catalogHandler.GetProduct).Methods(http.MethodGet)

	// Protected admin endpoints (require JWT with admin role)
	r.HandleFunc("/api/products", catalog.RequireAdmin(catalogHandler.CreateProduct)).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}", catalog.RequireAdmin(catalogHandler.UpdateProduct)).Methods(http.MethodPut)
	r.HandleFunc("/api/products/{id}", catalog.RequireAdmin(catalogHandler.DeleteProduct)).Methods(http.MethodDelete)

	s := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("pod-catalog listening on %s", s.Addr)
	log.Fatal(s.ListenAndServe())
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geo2max-server/internal/config"
	"geo2max-server/internal/handler"
	"geo2max-server/internal/middleware"
	"geo2max-server/internal/remote"
	"geo2max-server/internal/repository"
	"geo2max-server/internal/service"
	"geo2max-server/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	version, err := client.Version(context.Background())
	if err != nil {
		log.Fatalf("Failed to reach CouchDB: %v", err)
	}
	log.Printf("Connected to CouchDB %s at %s:%s", version.Version, cfg.Database.Host, cfg.Database.Port)

	activityRepo := repository.NewActivityRepository(client)

	remoteClient := remote.NewClient(
		cfg.Remote.BaseURL,
		cfg.Remote.Timeout,
		cfg.Remote.RequestsPerSecond,
		cfg.Remote.Burst,
	)

	// WebSocket Manager
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	sessionService := service.NewSessionService(cfg.JWT.Secret, cfg.JWT.Expiration)
	syncService := service.NewSyncService(activityRepo, remoteClient, wsManager, cfg.Remote.PageSize)
	activityService := service.NewActivityService(activityRepo, wsManager)
	streamService := service.NewStreamService(remoteClient)

	authHandler := handler.NewAuthHandler(sessionService)
	syncHandler := handler.NewSyncHandler(syncService)
	activityHandler := handler.NewActivityHandler(activityService)
	streamHandler := handler.NewStreamHandler(streamService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/session", authHandler.IssueSession).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/sync", syncHandler.Sync).Methods("GET", "OPTIONS")
	protected.HandleFunc("/activities", activityHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/activities", activityHandler.Drop).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/latLngStream", streamHandler.LatLngStream).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Geo2Max Server on %s (env: %s)", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"geo2max-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Geo2Max Server API","version":"1.0.0","endpoints":{"/api/v1/auth/session":"POST","/api/v1/sync":"GET (protected)","/api/v1/activities":"GET, DELETE (protected)","/api/v1/latLngStream":"GET (protected)"}}`))
}

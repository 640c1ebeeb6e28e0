package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/blackboard/blackboard/internal/auth"
	"github.com/blackboard/blackboard/internal/board"
	"github.com/blackboard/blackboard/internal/collab"
	"github.com/blackboard/blackboard/internal/config"
	"github.com/blackboard/blackboard/internal/engine"
	mw "github.com/blackboard/blackboard/internal/middleware"
	"github.com/blackboard/blackboard/internal/storage"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for EDITOR_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hash password:", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, closeStore, err := openCatalog(ctx, cfg)
	if err != nil {
		slog.Error("open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	saves := storage.NewDebouncer(catalog, cfg.SaveDelay)
	eng := engine.NewEngine(
		engine.WithSaver(saves),
		engine.WithHistoryDepth(cfg.HistoryDepth),
	)

	hub := collab.NewHub(eng, collab.WithBoardName(catalog.Current))
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	boardService := board.NewService(catalog, saves, hub)
	if err := boardService.Reload(ctx); err != nil {
		slog.Error("open board", "error", err)
		os.Exit(1)
	}
	boardHandler := board.NewHandler(boardService)

	authService := auth.NewService(cfg.EditorPasswordHash, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	if !authService.Enabled() {
		slog.Warn("EDITOR_PASSWORD_HASH not set, the API is open to anyone who can reach it")
	}

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	boardHandler.Register(api)

	// WebSocket endpoint; browsers pass the token as a query parameter
	originPatterns := cfg.OriginPatterns()
	r.Handle("/ws", authService.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, originPatterns)
	})))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		// Stop the hub so no edit lands after the final save
		stopHub()
		<-hub.Done()
		slog.Info("saving board...", "name", catalog.Current())
		if err := saves.Flush(); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", addr, "storage", cfg.StorageDriver, "board", catalog.Current())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}

// openCatalog opens the board catalog for the configured driver and
// returns a func releasing its connections.
func openCatalog(ctx context.Context, cfg *config.Config) (storage.Catalog, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLiteStore(ctx, db, cfg.BoardName)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.DriverPostgres:
		pool, err := storage.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewPostgresStore(ctx, pool, cfg.BoardName)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		store, err := storage.NewFileStore(cfg.DataDir, cfg.BoardName)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, originPatterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn)
	if err := client.Serve(r.Context()); err != nil {
		slog.Debug("websocket closed", "client", client.ID, "error", err)
	}
}

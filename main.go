package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishanu7/debate-backend/config"
	"github.com/krishanu7/debate-backend/db"
	"github.com/krishanu7/debate-backend/internal/auth"
	"github.com/krishanu7/debate-backend/internal/debate"
	"github.com/krishanu7/debate-backend/internal/leaderboard"
	"github.com/krishanu7/debate-backend/internal/scoring"
	"github.com/krishanu7/debate-backend/internal/ws"
	"github.com/krishanu7/debate-backend/pkg/httpjson"
	rdbPkg "github.com/krishanu7/debate-backend/pkg/redis"
	wsPkg "github.com/krishanu7/debate-backend/pkg/websocket"
	"github.com/redis/go-redis/v9"
)

type app struct {
	db          *sql.DB
	rdb         *redis.Client
	hub         *wsPkg.Hub
	authService *auth.Service
	debates     *debate.Service
	leaderboard *leaderboard.Service
	scorer      *scoring.Client
}

// newApp wires stores and services. Without DB_URL everything is kept in
// memory; without REDIS_ADDR events go straight to the local hub.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{hub: wsPkg.NewHub()}

	var (
		userStore   auth.Store
		debateStore debate.Store
		statsStore  leaderboard.Store
	)
	if cfg.MemoryMode() {
		log.Println("DB_URL not set, using in-memory stores")
		userStore = auth.NewMemoryStore()
		debateStore = debate.NewMemoryStore()
		statsStore = leaderboard.NewMemoryStore()
	} else {
		conn, err := db.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(conn); err != nil {
			conn.Close()
			return nil, err
		}
		a.db = conn
		userStore = auth.NewPostgresStore(conn)
		debateStore = debate.NewPostgresStore(conn)
		statsStore = leaderboard.NewPostgresStore(conn)
	}

	var notifier debate.Notifier = ws.NewHubNotifier(a.hub)
	if cfg.RedisAddr != "" {
		rdb, err := rdbPkg.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
		notifier = ws.NewPublisher(rdb)
	}

	a.scorer = scoring.NewClient(cfg.MLAPIURL, scoring.Timeouts{
		Analyze:  cfg.MLAnalyzeTimeout,
		Finalize: cfg.MLFinalizeTimeout,
		Health:   cfg.MLHealthTimeout,
	})
	fallback := scoring.NewFallback(cfg.JitterAmplitude, cfg.JitterSeed)

	a.authService = auth.NewService(userStore, cfg.JWTSecret)
	a.leaderboard = leaderboard.NewService(statsStore, debateStore)
	a.debates = debate.NewService(debateStore, a.scorer, fallback, notifier, a.leaderboard)
	return a, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	requireAuth := a.authService.RequireAuth

	authHandler := auth.NewAuthHandler(a.authService)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	debate.NewHandler(a.debates).Register(mux, requireAuth)

	lb := leaderboard.NewHandler(a.leaderboard)
	mux.HandleFunc("GET /api/v1/leaderboard", lb.Leaderboard)
	mux.HandleFunc("GET /api/v1/profile", requireAuth(lb.Profile))

	mux.HandleFunc("GET /api/v1/ml-status", scoring.StatusHandler(a.scorer))
	mux.HandleFunc("GET /ws/debates/{id}", ws.NewHandler(a.hub, a.authService, a.debates).ServeWS)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// runWorkers starts the Redis relay, which stops with ctx.
func (a *app) runWorkers(ctx context.Context) {
	if a.rdb == nil {
		return
	}
	go ws.NewNotificationWorker(a.rdb, a.hub).Run(ctx)
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()
	a.runWorkers(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server started at :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

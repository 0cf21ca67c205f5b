package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/ai"
	"github.com/lalith-99/sheetcrm/internal/api"
	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/config"
	"github.com/lalith-99/sheetcrm/internal/customfield"
	"github.com/lalith-99/sheetcrm/internal/db"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/localstate"
	"github.com/lalith-99/sheetcrm/internal/observ"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository/sheetstore"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/lalith-99/sheetcrm/internal/scheduler"
	"github.com/lalith-99/sheetcrm/internal/sheets"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	types, err := config.LoadActivityTypes(cfg.ActivityTypesFile)
	if err != nil {
		return fmt.Errorf("load activity types: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Open the row store
	//
	// The spreadsheet is the system of record. Postgres and memory
	// back the same range contract for self-hosting and local runs.
	// ---------------------------------------------------------------
	backend, err := openRowStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	retrier := retry.New(retry.Policy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}, logger)
	store := sheetstore.New(backend.rows, cache.New(cfg.CacheTTL), retrier, logger)
	if err := store.EnsureHeaders(ctx); err != nil {
		return fmt.Errorf("prepare sheets: %w", err)
	}

	// ---------------------------------------------------------------
	// 4. Local state and the AI response cache
	// ---------------------------------------------------------------
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	state, err := localstate.Open(localstate.Options{Path: cfg.StateDir})
	if err != nil {
		return fmt.Errorf("open local state: %w", err)
	}
	defer state.Close()

	var responses ai.ResponseCache = state.TextCache("ai:response:", cfg.AICacheTTL)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "sheetcrm:ai:", cfg.AICacheTTL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		responses = rc
		logger.Info("ai responses cached in redis")
	}

	// ---------------------------------------------------------------
	// 5. Services
	// ---------------------------------------------------------------
	hub := realtime.NewHub(logger)
	defer hub.Close()

	hist := history.NewLogger(sheetstore.NewHistoryStore(store), types, logger)
	activities := activity.NewService(sheetstore.NewActivityStore(store), hist, types, logger).
		WithPublisher(hub)
	aiSvc := ai.NewService(state, ai.Settings{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
	}, responses, retrier, logger)

	digest, err := scheduler.NewDigest(cfg.DigestSchedule, activities, hub, logger)
	if err != nil {
		return err
	}
	digest.Start(ctx)
	defer digest.Stop()

	// ---------------------------------------------------------------
	// 6. HTTP server
	// ---------------------------------------------------------------
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		JWTSecret:    cfg.JWTSecret,
		AccessHash:   cfg.AccessHash,
		Companies:    sheetstore.NewCompanyStore(store),
		Contacts:     sheetstore.NewContactStore(store),
		Tags:         sheetstore.NewTagStore(store),
		Preferences:  sheetstore.NewPreferencesStore(store),
		Loader:       sheetstore.NewLoader(store),
		Activities:   activities,
		History:      hist,
		CustomFields: customfield.NewService(sheetstore.NewCustomFieldStore(store), logger),
		AI:           aiSvc,
		Hub:          hub,
		Health:       backend.health,
		Refresh:      store.InvalidateAll,
		Logger:       logger,
	})
	if cfg.AccessHash == "" {
		logger.Warn("ACCESS_HASH is not set, nobody can log in")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting sheetcrm",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("backend", cfg.StoreBackend),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// rowBackend is the opened row store. health is nil when there is no
// connection worth pinging.
type rowBackend struct {
	rows   sheets.RowStore
	health func(context.Context) error
	close  func()
}

func openRowStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*rowBackend, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		g, err := sheets.NewGoogle(ctx, cfg.SpreadsheetID, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("connect to google sheets: %w", err)
		}
		return &rowBackend{rows: g, close: func() {}}, nil

	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pg := sheets.NewPostgres(database.Pool())
		if err := pg.EnsureSheets(ctx, sheetstore.SheetNames()...); err != nil {
			database.Close()
			return nil, err
		}
		return &rowBackend{rows: pg, health: database.Health, close: database.Close}, nil

	default:
		logger.Warn("using the in-memory backend, data is lost on restart")
		return &rowBackend{rows: sheets.NewMemory(sheetstore.SheetNames()...), close: func() {}}, nil
	}
}

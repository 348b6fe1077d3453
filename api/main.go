package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/config"
	"github.com/JesseBremer/journal-mate/internal/db"
	"github.com/JesseBremer/journal-mate/internal/http/ban"
	"github.com/JesseBremer/journal-mate/internal/http/handlers"
	rl "github.com/JesseBremer/journal-mate/internal/http/rate_limiter"
	"github.com/JesseBremer/journal-mate/internal/http/router"
	"github.com/JesseBremer/journal-mate/internal/journal"
	"github.com/JesseBremer/journal-mate/internal/logger"
	"github.com/JesseBremer/journal-mate/internal/redissvc"
	"github.com/JesseBremer/journal-mate/internal/repo"
)

// @title Journal Mate API
// @version 1.0
// @description Personal journaling service: session based auth and owner scoped journal entries.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name journal_session
func main() {
	configPath := flag.String("config", os.Getenv("JOURNAL_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Errorf("journal-mate: %v", err)
		logger.CloseLogger()
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.InitLogger(logger.ParseLevel(cfg.Log.Level), cfg.Log.File)
	defer logger.CloseLogger()

	if cfg.Session.Secret == config.DefaultSessionSecret {
		logger.Warning("session.secret is the built-in default; set JOURNAL_SESSION_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, dialect, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, dialect); err != nil {
		return err
	}
	logger.Infof("database ready (%s)", dialect)

	rdb, err := redissvc.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Infof("redis ready at %s", cfg.Redis.Addr)
	}

	users := repo.NewSQLUserRepository(database, dialect)
	credentials := auth.NewCredentials(users, cfg.Security.BcryptCost)
	if cfg.Seed.DefaultUser {
		created, err := credentials.EnsureDefaultUser(ctx)
		if err != nil {
			return err
		}
		if created {
			logger.Noticef("created default user %q", auth.DefaultUsername)
		}
	}

	sessions := auth.NewSessions(sessionStore(ctx, rdb), cfg.Session.Secret, cfg.Session.TTL)
	journalSvc := newJournalService(database, dialect)

	limiter := rl.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.StartVisitorCleanupLoop(ctx, time.Minute)

	server := handlers.NewServer(credentials, sessions, journalSvc, handlers.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Server.CookieSecure,
	})
	r := router.NewRouter(router.Config{
		Server:     server,
		Limiter:    limiter,
		Bans:       banTracker(ctx, rdb, cfg.RateLimit),
		TrustProxy: cfg.Server.TrustProxyHeaders,
	})

	return serve(ctx, cfg.Server, r)
}

func newJournalService(database *sql.DB, dialect db.Dialect) *journal.Service {
	return journal.NewService(
		repo.NewSQLEntryRepository(database, dialect),
		repo.NewSQLAccountRepository(database, dialect),
		repo.NewSQLStatsRepository(database, dialect),
	)
}

func sessionStore(ctx context.Context, rdb *redis.Client) auth.SessionStore {
	if rdb != nil {
		return auth.NewRedisSessionStore(rdb)
	}
	store := auth.NewMemorySessionStore()
	go store.StartCleaner(ctx, 30*time.Minute)
	return store
}

func banTracker(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig) ban.Tracker {
	policy := ban.Policy{
		MaxStrikes:   cfg.MaxStrikes,
		StrikeWindow: cfg.StrikeWindow,
		BanDuration:  cfg.BanDuration,
	}
	if rdb != nil {
		return ban.NewRedisTracker(rdb, policy)
	}
	tracker := ban.NewMemoryTracker(policy)
	go tracker.StartCleanupLoop(ctx, time.Minute)
	return tracker
}

func serve(ctx context.Context, cfg config.ServerConfig, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server running on %s", cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

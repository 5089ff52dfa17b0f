package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"GameNightwebserver/internal/auth"
	"GameNightwebserver/internal/config"
	"GameNightwebserver/internal/httpapi"
	"GameNightwebserver/internal/notifications"
	"GameNightwebserver/internal/service"
	"GameNightwebserver/internal/store/memory"
	"GameNightwebserver/internal/store/postgres"
)

type usersStore interface {
	service.UsersStore
	service.ProfileStore
	service.ViewUsersStore
}

// storeSet is one backend's implementation of every ledger.
type storeSet struct {
	users       usersStore
	sessions    service.SessionsStore
	friendships service.FriendshipsStore
	events      service.EventsStore
	games       service.GamesStore
	userSearch  service.UsersSearchStore
	adminUsers  service.AdminUsersStore
	tokens      service.NotificationTokensStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	var (
		stores storeSet
		dbPing func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if cfg.DBMigrate {
			if err := postgres.Migrate(ctx, pgPool); err != nil {
				logger.Error("db migrate failed", "err", err)
				os.Exit(1)
			}
		}

		stores = storeSet{
			users:       postgres.NewUsersStore(pgPool),
			sessions:    postgres.NewSessionsStore(pgPool),
			friendships: postgres.NewFriendshipsStore(pgPool),
			events:      postgres.NewEventsStore(pgPool),
			games:       postgres.NewGamesStore(pgPool),
			userSearch:  postgres.NewUserSearchStore(pgPool),
			adminUsers:  postgres.NewAdminUsersStore(pgPool),
			tokens:      postgres.NewNotificationTokensStore(pgPool),
		}
		dbPing = pgPool.Ping
	} else {
		logger.Warn("APP_DB_DSN not set, using in-memory store; data is lost on restart")
		db := memory.NewDB()
		stores = storeSet{
			users:       memory.NewUsersStore(db),
			sessions:    memory.NewSessionsStore(db),
			friendships: memory.NewFriendshipsStore(db),
			events:      memory.NewEventsStore(db),
			games:       memory.NewGamesStore(db),
			userSearch:  memory.NewUserSearchStore(db),
			adminUsers:  memory.NewAdminUsersStore(db),
			tokens:      memory.NewNotificationTokensStore(db),
		}
	}

	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Error("token secret generation failed", "err", err)
			os.Exit(1)
		}
		logger.Warn("APP_TOKEN_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	authSvc := &service.AuthService{
		Users:    stores.users,
		Sessions: stores.sessions,
		Tokens:   auth.NewTokenIssuer(secret, cfg.TokenIssuer),
		Hasher:   auth.Hasher{Params: auth.DefaultArgon2Params},
		TokenTTL: cfg.TokenTTL,
	}

	if cfg.AdminBootstrapPassword != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.AdminBootstrapUsername, cfg.AdminBootstrapPassword)
		if err != nil {
			logger.Error("bootstrap admin failed", "err", err)
			os.Exit(1)
		}
		if created {
			logger.Info("admin bootstrap: created admin user", "username", cfg.AdminBootstrapUsername)
		} else {
			logger.Info("admin bootstrap: user already exists", "username", cfg.AdminBootstrapUsername)
		}
	}

	notificationsSvc := &service.NotificationService{
		Tokens: stores.tokens,
		Users:  stores.users,
		Logger: logger,
	}
	if cfg.FCMEnabled() {
		sender, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentials, logger)
		if err != nil {
			logger.Error("fcm init failed", "err", err)
			os.Exit(1)
		}
		notificationsSvc.Sender = sender
		logger.Info("push notifications enabled")
	} else {
		logger.Info("push notifications disabled: set APP_FCM_CREDENTIALS to enable")
	}

	friendsSvc := &service.FriendsService{Users: stores.users, Friendships: stores.friendships}
	eventsSvc := &service.EventsService{Store: stores.events, Games: stores.games}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:  logger,
		IsProd:  cfg.IsProd(),
		DBPing:  dbPing,
		Auth:    authSvc,
		Profile: &service.ProfileService{Store: stores.users},
		Users:   &service.UsersService{Store: stores.userSearch},
		Friends: friendsSvc,
		Events:  eventsSvc,
		Games:   &service.GamesService{Store: stores.games},
		Gateway: &service.Gateway{
			Friends:       friendsSvc,
			Events:        eventsSvc,
			Notifier:      notificationsSvc,
			StrictInvites: cfg.StrictInvites,
			Logger:        logger,
		},
		Views: &service.Views{Users: stores.users, Friends: friendsSvc, Events: eventsSvc, Games: stores.games},
		Admin: &service.AdminService{
			Users:       stores.adminUsers,
			Accounts:    stores.users,
			Events:      stores.events,
			Friendships: stores.friendships,
		},
		Notifications: notificationsSvc,
		Metrics:       httpapi.NewMetrics(),
		LoginRate:     cfg.LoginRate,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr, "strict_invites", cfg.StrictInvites)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

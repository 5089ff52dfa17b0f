package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"GameNightwebserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth          *service.AuthService
	Profile       *service.ProfileService
	Users         *service.UsersService
	Friends       *service.FriendsService
	Events        *service.EventsService
	Games         *service.GamesService
	Gateway       *service.Gateway
	Views         *service.Views
	Admin         *service.AdminService
	Notifications *service.NotificationService

	// Metrics is optional; /metrics is only mounted when set.
	Metrics *Metrics
	// LoginRate is the number of login attempts allowed per key every five minutes.
	LoginRate int
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:           logger,
		isProd:           opts.IsProd,
		dbPing:           opts.DBPing,
		authSvc:          opts.Auth,
		profileSvc:       opts.Profile,
		usersSvc:         opts.Users,
		friendsSvc:       opts.Friends,
		eventsSvc:        opts.Events,
		gamesSvc:         opts.Games,
		gateway:          opts.Gateway,
		views:            opts.Views,
		adminSvc:         opts.Admin,
		notificationsSvc: opts.Notifications,
		loginLimiter:     newLoginLimiter(opts.LoginRate),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)
	if opts.Metrics != nil {
		publicMux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	if api.authSvc == nil {
		apiMux.HandleFunc("POST /v1/register", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/login", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/register", api.handleAuthRegister)
		apiMux.HandleFunc("POST /v1/login", api.handleAuthLogin)
		apiMux.HandleFunc("POST /v1/logout", api.requireAuth(api.handleAuthLogout))
		apiMux.HandleFunc("DELETE /v1/users/me", api.requireAuth(api.handleUsersMeDelete))

		if api.profileSvc != nil {
			apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))
			apiMux.HandleFunc("PATCH /v1/users/me", api.requireAuth(api.handleUsersMeUpdate))
			apiMux.HandleFunc("GET /v1/users/{id}", api.requireAuth(api.handleUsersGet))
		}
		if api.usersSvc != nil {
			apiMux.HandleFunc("GET /v1/users/search", api.requireAuth(api.handleUsersSearch))
		}

		if api.friendsSvc != nil && api.gateway != nil && api.views != nil {
			apiMux.HandleFunc("GET /v1/friends", api.requireAuth(api.handleFriendsOverview))
			apiMux.HandleFunc("GET /v1/friends/list", api.requireAuth(api.handleFriendsList))
			apiMux.HandleFunc("POST /v1/friends/request", api.requireAuth(api.handleFriendsRequest))
			apiMux.HandleFunc("PUT /v1/friends/respond", api.requireAuth(api.handleFriendsRespond))
			apiMux.HandleFunc("DELETE /v1/friends/{id}", api.requireAuth(api.handleFriendsRemove))
			apiMux.HandleFunc("POST /v1/friends/block", api.requireAuth(api.handleFriendsBlock))
			apiMux.HandleFunc("DELETE /v1/friends/block/{username}", api.requireAuth(api.handleFriendsUnblock))
		}

		if api.eventsSvc != nil && api.gateway != nil && api.views != nil {
			apiMux.HandleFunc("POST /v1/events", api.requireAuth(api.handleEventsCreate))
			apiMux.HandleFunc("GET /v1/events", api.requireAuth(api.handleEventsList))
			apiMux.HandleFunc("GET /v1/events/calendar", api.requireAuth(api.handleEventsCalendar))
			apiMux.HandleFunc("GET /v1/events/{id}", api.requireAuth(api.handleEventsGet))
			apiMux.HandleFunc("PATCH /v1/events/{id}", api.requireAuth(api.handleEventsUpdate))
			apiMux.HandleFunc("DELETE /v1/events/{id}", api.requireAuth(api.handleEventsDelete))
			apiMux.HandleFunc("POST /v1/events/{id}/invite", api.requireAuth(api.handleEventsInvite))
			apiMux.HandleFunc("PUT /v1/events/{id}/rsvp", api.requireAuth(api.handleEventsRSVP))
			apiMux.HandleFunc("POST /v1/events/{id}/cancel", api.requireAuth(api.handleEventsCancel))
			apiMux.HandleFunc("POST /v1/events/{id}/complete", api.requireAuth(api.handleEventsComplete))
			apiMux.HandleFunc("POST /v1/events/{id}/attended", api.requireAuth(api.handleEventsAttended))
			apiMux.HandleFunc("GET /v1/events/{id}/roster", api.requireAuth(api.handleEventsRoster))
		}

		if api.gamesSvc != nil {
			apiMux.HandleFunc("GET /v1/games", api.requireAuth(api.handleGamesList))
			apiMux.HandleFunc("POST /v1/games", api.requireAuth(api.handleGamesCreate))
			apiMux.HandleFunc("PATCH /v1/games/{id}", api.requireAuth(api.handleGamesUpdate))
			apiMux.HandleFunc("DELETE /v1/games/{id}", api.requireAuth(api.handleGamesDelete))
		}

		if api.notificationsSvc != nil {
			apiMux.HandleFunc("PUT /v1/notifications/token", api.requireAuth(api.handleNotificationsTokenUpsert))
			apiMux.HandleFunc("DELETE /v1/notifications/token", api.requireAuth(api.handleNotificationsTokenDelete))
		}

		if api.adminSvc != nil {
			apiMux.HandleFunc("GET /v1/admin/users", api.requireAdmin(api.handleAdminUsersList))
			apiMux.HandleFunc("GET /v1/admin/users/export", api.requireAdmin(api.handleAdminUsersExport))
			apiMux.HandleFunc("DELETE /v1/admin/users/{id}", api.requireAdmin(api.handleAdminUsersDelete))
			apiMux.HandleFunc("DELETE /v1/admin/events/{id}", api.requireAdmin(api.handleAdminEventsDelete))
			apiMux.HandleFunc("DELETE /v1/admin/friendships/{id}", api.requireAdmin(api.handleAdminFriendshipsDelete))
		}
	}

	// apiMux.ServeHTTP sets r.Pattern and the path values; Handler(r) does not.
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := apiMux.Handler(r); pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		apiMux.ServeHTTP(w, r)
	})

	var root http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	// Recoverer sits inside the logger and metrics so a panic is counted
	// and logged as the 500 it becomes.
	h := Recoverer(logger, opts.IsProd)(root)
	if opts.Metrics != nil {
		h = opts.Metrics.Middleware(h)
	}
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc          *service.AuthService
	profileSvc       *service.ProfileService
	usersSvc         *service.UsersService
	friendsSvc       *service.FriendsService
	eventsSvc        *service.EventsService
	gamesSvc         *service.GamesService
	gateway          *service.Gateway
	views            *service.Views
	adminSvc         *service.AdminService
	notificationsSvc *service.NotificationService

	loginLimiter *loginLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			a.logger.Warn("healthz: db ping failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}

// pathID reads a path parameter, answering 400 itself when it is blank.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		WriteDomainError(w, validationField(name, "required"))
		return "", false
	}
	return id, true
}

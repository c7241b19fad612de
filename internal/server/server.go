package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/internal/community"
	"github.com/brk3/habitkeeper/internal/config"
	"github.com/brk3/habitkeeper/internal/feed"
	"github.com/brk3/habitkeeper/internal/prefs"
	"github.com/brk3/habitkeeper/internal/profile"
	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg     *config.Config
	store   storage.Store
	cache   cache.Store
	now     func() time.Time
	tracker *tracker.Tracker
	feed    *feed.Feed
	prefs   *prefs.Service
	profile *profile.Service

	community *community.Board

	authProviders map[string]*AuthProvider
	sessionCookie *securecookie.SecureCookie
}

type Option func(*Server)

// WithCache sets the store backing notifications, preferences, profiles
// and community posts. An in-memory cache is used when none is given.
func WithCache(c cache.Store) Option {
	return func(s *Server) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg *config.Config, store storage.Store, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s.feed = feed.New(s.cache)
	s.prefs = prefs.New(s.cache)
	s.tracker = tracker.New(store,
		tracker.WithClock(s.now),
		tracker.WithLocation(loc),
		tracker.WithFeed(s.feed),
	)
	s.profile = profile.New(s.cache, s.tracker)
	s.community = community.New(s.cache)

	if cfg.AuthEnabled {
		providers, sc, err := newAuthProviders(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("configuring auth: %w", err)
		}
		s.authProviders = providers
		s.sessionCookie = sc
	}
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.AuthEnabled {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.simpleLogin)
			r.Get("/login/{id}", s.login)
			r.Get("/callback/{id}", s.callback)
			r.Post("/logout", s.logout)
			r.Get("/token", s.getAPIToken)
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Use(requireWriteScope)
				r.Post("/api_keys", s.generateAPIKey)
				r.Get("/api_keys", s.listAPIKeys)
				r.Delete("/api_keys/{key_id}", s.revokeAPIKey)
			})
		})
	}

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		} else {
			r.Use(anonymousMiddleware)
		}
		r.Use(requireWriteScope)
		r.Use(userAwareMetricsMiddleware)

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.listHabits)
			r.Post("/", s.createHabit)
			r.Get("/today", s.todayHabits)
			r.Get("/{habit_id}", s.getHabit)
			r.Put("/{habit_id}", s.updateHabit)
			r.Delete("/{habit_id}", s.deleteHabit)
			r.Get("/{habit_id}/progress", s.getHabitProgress)
			r.Get("/{habit_id}/summary", s.getHabitSummary)
			r.Post("/{habit_id}/completions/{date}", s.toggleCompletion)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Delete("/", s.clearNotifications)
			r.Post("/read", s.markAllNotificationsRead)
			r.Post("/{notification_id}/read", s.markNotificationRead)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.getSettings)
			r.Put("/", s.putSettings)
			r.Delete("/", s.resetSettings)
			r.Post("/dark_mode/toggle", s.toggleDarkMode)
			r.Put("/last_tab/{tab}", s.setLastTab)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", s.getProfile)
			r.Put("/", s.putProfile)
			r.Get("/stats", s.getProfileStats)
		})

		r.Route("/community/posts", func(r chi.Router) {
			r.Get("/", s.listPosts)
			r.Post("/", s.createPost)
			r.Delete("/{post_id}", s.deletePost)
		})
	})
	return r
}

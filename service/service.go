package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/internal/handlers"
	"github.com/loganlanou/profiledesk/internal/jobs"
	appmw "github.com/loganlanou/profiledesk/internal/middleware"
	"github.com/loganlanou/profiledesk/internal/session"
	"github.com/loganlanou/profiledesk/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

const redisPingTimeout = 5 * time.Second

type Service struct {
	config   *Config
	storage  *storage.Storage
	redis    *redis.Client
	store    session.Store
	sessions *session.Manager
	auth     *auth.Service
	sweeper  *jobs.SessionSweeper
	registry *prometheus.Registry

	homeHandler    *handlers.HomeHandler
	authHandler    *handlers.AuthHandler
	profileHandler *handlers.ProfileHandler
}

// New opens the configured session backend and wires the application
func New(config *Config) (*Service, error) {
	s := &Service{config: config}

	switch config.Session.Backend {
	case BackendSQLite:
		db, err := storage.New(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.storage = db
		s.store = storage.NewSessionStore(db.Queries)

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Redis.Addr, err)
		}
		s.redis = client
		s.store = storage.NewRedisStore(client, config.SessionMaxAge())

	case BackendMemory:
		slog.Warn("using in-memory session store, sessions are lost on restart")
		s.store = session.NewMemoryStore()

	default:
		return nil, fmt.Errorf("unknown session backend %q", config.Session.Backend)
	}

	s.wire()

	if sweeper, ok := s.store.(session.Sweeper); ok {
		s.sweeper = jobs.NewSessionSweeper(sweeper, config.SessionMaxAge())
		s.sweeper.Start(context.Background())
	}

	return s, nil
}

// wire builds everything that sits on top of the session store
func (s *Service) wire() {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	browserBase := api.ResolveBrowserBase(s.config.IsDevelopment(), s.config.API.URL)
	serverBase := api.ResolveServerBase(browserBase, s.config.BaseURL)
	client := api.New(serverBase,
		api.WithTimeout(s.config.API.Timeout),
		api.WithMetrics(api.NewMetrics(s.registry)),
	)
	slog.Info("api client configured", "browser_base", browserBase, "server_base", serverBase)

	secure := !s.config.IsDevelopment()
	s.auth = auth.NewService(client, s.store)
	s.sessions = session.NewManager(s.config.Session.Secret, secure, s.config.Session.MaxAge, s.store)

	cfg := handlers.Config{
		SiteURL:        s.config.BaseURL,
		BrowserAPIBase: browserBase,
		UploadMaxSize:  s.config.Upload.MaxSize,
	}
	s.homeHandler = handlers.NewHomeHandler(cfg)
	s.authHandler = handlers.NewAuthHandler(cfg)
	s.profileHandler = handlers.NewProfileHandler(cfg)
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Static files - no session middleware
	e.Static("/public", "public")

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// In development the browser calls the API on this origin
	if s.config.IsDevelopment() && s.config.API.ProxyTarget != "" {
		if target, err := url.Parse(s.config.API.ProxyTarget); err != nil {
			slog.Error("invalid API_PROXY_TARGET, /api proxy disabled", "target", s.config.API.ProxyTarget, "error", err)
		} else {
			proxy := e.Group("/api")
			proxy.Use(echomw.ProxyWithConfig(echomw.ProxyConfig{
				Balancer: echomw.NewRoundRobinBalancer([]*echomw.ProxyTarget{{URL: target}}),
			}))
			slog.Info("proxying /api in development", "target", target.String())
		}
	}

	// All page routes carry the browser session
	pages := e.Group("")
	pages.Use(appmw.LoadSession(s.sessions, s.auth))

	pages.GET("/", s.homeHandler.HandleHome)
	pages.GET("/login", s.authHandler.HandleLoginPage)
	pages.POST("/login", s.authHandler.HandleLogin)
	pages.POST("/register", s.authHandler.HandleRegister)

	// Guarded routes
	guarded := pages.Group("", appmw.RequireAuth())
	guarded.GET("/logout", s.authHandler.HandleLogout)
	guarded.GET("/profile", s.profileHandler.HandleProfile)
	guarded.POST("/profile", s.profileHandler.HandleSaveProfile)
	guarded.POST("/profile/image", s.profileHandler.HandleUploadImage)
	guarded.POST("/profile/image/delete", s.profileHandler.HandleRemoveImage)
	guarded.DELETE("/profile/image", s.profileHandler.HandleRemoveImage)

	// Anything else shows the login view
	pages.RouteNotFound("/*", s.authHandler.HandleNotFound)
}

func (s *Service) handleHealth(c echo.Context) error {
	status := http.StatusOK
	backend := "connected"
	if err := s.ping(c.Request().Context()); err != nil {
		slog.Error("health check failed", "backend", s.config.Session.Backend, "error", err)
		status = http.StatusServiceUnavailable
		backend = "unavailable"
	}

	return c.JSON(status, map[string]any{
		"status":          http.StatusText(status),
		"environment":     s.config.Environment,
		"session_backend": s.config.Session.Backend,
		"store":           backend,
	})
}

func (s *Service) ping(ctx context.Context) error {
	switch {
	case s.storage != nil:
		return s.storage.DB().PingContext(ctx)
	case s.redis != nil:
		return s.redis.Ping(ctx).Err()
	}
	return nil
}

// Close stops background work and releases the session backend
func (s *Service) Close() error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	var err error
	if s.storage != nil {
		err = multierr.Append(err, s.storage.Close())
	}
	if s.redis != nil {
		err = multierr.Append(err, s.redis.Close())
	}
	return err
}

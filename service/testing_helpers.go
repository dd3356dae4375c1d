package service

import (
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/api/apitest"
	"github.com/loganlanou/profiledesk/internal/session"
)

// setupTestService creates a service backed by an in-memory session store
// and a fake remote API
func setupTestService(t *testing.T) (*Service, *apitest.Server) {
	t.Helper()

	fake := apitest.NewServer(t)

	config := &Config{
		Environment: "test",
		Port:        "8080",
		BaseURL:     "http://localhost:8080",
	}
	config.API.URL = fake.URL
	config.API.Timeout = 5 * time.Second
	config.Session.Secret = "test-secret-test-secret-test-secret"
	config.Session.Backend = BackendMemory
	config.Session.MaxAge = 3600
	config.Upload.MaxSize = 1 << 20

	svc := &Service{
		config: config,
		store:  session.NewMemoryStore(),
	}
	svc.wire()

	return svc, fake
}

// setupTestEcho creates an Echo instance with routes registered
func setupTestEcho(t *testing.T) (*echo.Echo, *Service, *apitest.Server) {
	t.Helper()

	e := echo.New()
	svc, fake := setupTestService(t)
	svc.RegisterRoutes(e)

	return e, svc, fake
}

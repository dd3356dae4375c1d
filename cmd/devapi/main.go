// Command devapi serves an in-memory stand-in for the remote user API so the
// site can be run locally without the real backend. Point API_PROXY_TARGET
// at it in development.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/loganlanou/profiledesk/internal/api/apitest"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password"
)

func main() {
	port := getEnv("DEVAPI_PORT", "3000")
	numUsers, err := strconv.Atoi(getEnv("DEVAPI_USERS", "10"))
	if err != nil {
		slog.Error("invalid DEVAPI_USERS", "error", err)
		os.Exit(1)
	}

	fake := apitest.NewAPI()
	seed(fake, numUsers)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Any("/api/*", echo.WrapHandler(fake))

	slog.Info("dev api starting",
		"url", fmt.Sprintf("http://localhost:%s", port),
		"demo_email", demoEmail,
		"demo_password", demoPassword,
		"seeded_users", numUsers,
	)

	if err := e.Start(":" + port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// seed adds a known demo account plus numUsers random ones
func seed(fake *apitest.API, numUsers int) {
	fake.AddUser(apitest.User{
		Username:  "demo",
		Firstname: "Demo",
		Lastname:  "User",
		Email:     demoEmail,
		Password:  demoPassword,
	})

	for i := 0; i < numUsers; i++ {
		person := gofakeit.Person()
		fake.AddUser(apitest.User{
			Username:  gofakeit.Username(),
			Firstname: person.FirstName,
			Lastname:  person.LastName,
			Email:     person.Contact.Email,
			Password:  demoPassword,
		})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

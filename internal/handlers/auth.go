package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/views/pages"
)

const (
	msgInvalidLogin      = "Invalid email or password."
	msgMissingFields     = "Please fill in all fields."
	msgRegisterFailed    = "Register failed"
	msgLoginManually     = "Account created. Please login manually."
	registerModeQuery    = "mode"
	registerModeRegister = "register"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	cfg Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

func (h *AuthHandler) loginData(c echo.Context, register bool) pages.LoginData {
	title := "Login"
	if register {
		title = "Create Account"
	}
	return pages.LoginData{
		Page:     h.cfg.page(c, title),
		Register: register,
	}
}

// HandleLoginPage renders the login form, or the register form with ?mode=register.
// Logged-in browsers go straight to their profile.
func (h *AuthHandler) HandleLoginPage(c echo.Context) error {
	return h.renderLoginPage(c, http.StatusOK)
}

// HandleNotFound renders the login view for any unknown path
func (h *AuthHandler) HandleNotFound(c echo.Context) error {
	return h.renderLoginPage(c, http.StatusNotFound)
}

func (h *AuthHandler) renderLoginPage(c echo.Context, status int) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if sess.IsLoggedIn() {
		return c.Redirect(http.StatusFound, profilePath)
	}

	register := c.QueryParam(registerModeQuery) == registerModeRegister
	return RenderStatus(c, status, pages.Login(h.loginData(c, register)))
}

// HandleLogin authenticates with the API and persists the session on success
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if !sess.Login(c.Request().Context(), email, password) {
		data := h.loginData(c, false)
		data.Email = email
		data.Error = msgInvalidLogin
		return Render(c, pages.Login(data))
	}

	return c.Redirect(http.StatusSeeOther, profilePath)
}

// HandleRegister creates an account and then logs straight into it
func (h *AuthHandler) HandleRegister(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	in := api.RegisterRequest{
		Username:  strings.TrimSpace(c.FormValue("username")),
		Firstname: strings.TrimSpace(c.FormValue("firstname")),
		Lastname:  strings.TrimSpace(c.FormValue("lastname")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Password:  c.FormValue("password"),
	}

	data := h.loginData(c, true)
	data.Username = in.Username
	data.Firstname = in.Firstname
	data.Lastname = in.Lastname
	data.Email = in.Email

	if in.Username == "" || in.Firstname == "" || in.Lastname == "" || in.Email == "" || in.Password == "" {
		data.Error = msgMissingFields
		return Render(c, pages.Login(data))
	}

	if err := sess.API().Register(ctx, in); err != nil {
		slog.Info("registration failed", "email", in.Email, "error", err)
		data.Error = api.MessageOr(err, msgRegisterFailed)
		return Render(c, pages.Login(data))
	}
	slog.Info("account created", "email", in.Email)

	if !sess.Login(ctx, in.Email, in.Password) {
		data.Error = msgLoginManually
		return Render(c, pages.Login(data))
	}

	return c.Redirect(http.StatusSeeOther, profilePath)
}

// HandleLogout ends the session and returns to the login page
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	sess.Logout(c.Request().Context())
	return c.Redirect(http.StatusFound, loginPath)
}

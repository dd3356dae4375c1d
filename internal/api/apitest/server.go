// Package apitest provides an in-process fake of the remote user API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// SessionCookie is the cookie the fake API issues on login
const SessionCookie = "connect.sid"

// User is an account held by the fake API
type User struct {
	ID           int
	Username     string
	Firstname    string
	Lastname     string
	Email        string
	Password     string
	ProfileImage string
}

// API is a fake remote user API backed by memory. It can be served by a
// test server or a real listener.
type API struct {
	mux *http.ServeMux

	mu        sync.Mutex
	nextID    int
	users     map[string]*User // by email
	tokens    map[string]string
	calls     []string
	overrides map[string]http.HandlerFunc
	lastImage string
	tokenSeq  int
}

// NewAPI returns an empty fake API
func NewAPI() *API {
	a := &API{
		mux:       http.NewServeMux(),
		nextID:    1,
		users:     make(map[string]*User),
		tokens:    make(map[string]string),
		overrides: make(map[string]http.HandlerFunc),
	}

	a.mux.HandleFunc("POST /api/user", a.handleRegister)
	a.mux.HandleFunc("POST /api/user/login", a.handleLogin)
	a.mux.HandleFunc("POST /api/user/logout", a.handleLogout)
	a.mux.HandleFunc("GET /api/user/profile", a.handleGetProfile)
	a.mux.HandleFunc("PUT /api/user/profile", a.handleUpdateProfile)
	a.mux.HandleFunc("POST /api/user/profile/image", a.handleUploadImage)
	a.mux.HandleFunc("DELETE /api/user/profile/image", a.handleDeleteImage)

	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	a.mu.Lock()
	a.calls = append(a.calls, key)
	override := a.overrides[key]
	a.mu.Unlock()

	if override != nil {
		override(w, r)
		return
	}
	a.mux.ServeHTTP(w, r)
}

// Server is an API listening on a local test server
type Server struct {
	*httptest.Server
	*API
}

// NewServer starts a fake API that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()

	fake := NewAPI()
	s := &Server{
		Server: httptest.NewServer(fake),
		API:    fake,
	}
	t.Cleanup(s.Close)

	return s
}

// AddUser registers an account directly
func (a *API) AddUser(u User) *User {
	a.mu.Lock()
	defer a.mu.Unlock()

	u.ID = a.nextID
	a.nextID++
	a.users[u.Email] = &u
	return &u
}

// UserByEmail returns a copy of the stored account
func (a *API) UserByEmail(email string) (User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[email]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// Override replaces the handler for "METHOD /path"
func (a *API) Override(key string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overrides[key] = h
}

// Respond makes "METHOD /path" always answer with status and a JSON body
func (a *API) Respond(key string, status int, body any) {
	a.Override(key, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

// Calls returns the "METHOD /path" of every request received so far
func (a *API) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// CallCount counts requests to "METHOD /path"
func (a *API) CallCount(key string) int {
	n := 0
	for _, c := range a.Calls() {
		if c == key {
			n++
		}
	}
	return n
}

// LastImageContentType returns the part Content-Type of the last upload
func (a *API) LastImageContentType() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastImage
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username  string `json:"username"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	if _, exists := a.UserByEmail(in.Email); exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}

	u := a.AddUser(User{
		Username:  in.Username,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Password:  in.Password,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "message": "User created"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	u, ok := a.UserByEmail(in.Email)
	if !ok || u.Password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	a.mu.Lock()
	a.tokenSeq++
	token := fmt.Sprintf("tok-%d-%d", u.ID, a.tokenSeq)
	a.tokens[token] = u.Email
	a.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in"})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		a.mu.Lock()
		delete(a.tokens, c.Value)
		a.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := a.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	a.mu.Lock()
	body := profileJSON(u)
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := a.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	var in struct {
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if other, taken := a.users[in.Email]; taken && other.ID != u.ID {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email taken"})
		return
	}

	oldEmail := u.Email
	delete(a.users, oldEmail)
	u.Firstname, u.Lastname, u.Email = in.Firstname, in.Lastname, in.Email
	a.users[u.Email] = u
	for token, email := range a.tokens {
		if email == oldEmail {
			a.tokens[token] = u.Email
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"firstname": u.Firstname,
		"lastname":  u.Lastname,
		"email":     u.Email,
	})
}

func (a *API) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	u, ok := a.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
		return
	}
	defer file.Close()

	a.mu.Lock()
	u.ProfileImage = "/uploads/" + strconv.Itoa(u.ID) + "-" + header.Filename
	a.lastImage = header.Header.Get("Content-Type")
	image := u.ProfileImage
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": image})
}

func (a *API) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	u, ok := a.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	a.mu.Lock()
	u.ProfileImage = ""
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image removed"})
}

// authenticate returns the live stored user behind the request's cookie
func (a *API) authenticate(r *http.Request) (*User, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	email, ok := a.tokens[c.Value]
	if !ok {
		return nil, false
	}
	u, ok := a.users[email]
	return u, ok
}

func profileJSON(u *User) map[string]any {
	var image any
	if u.ProfileImage != "" {
		image = u.ProfileImage
	}
	return map[string]any{
		"id":           strconv.Itoa(u.ID),
		"firstname":    u.Firstname,
		"lastname":     u.Lastname,
		"email":        u.Email,
		"profileImage": image,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

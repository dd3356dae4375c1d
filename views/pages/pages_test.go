package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/views/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testPage() Page {
	return Page{
		Meta: layout.PageMeta{Title: "Test", SiteName: layout.SiteName},
		Auth: &auth.Context{},
	}
}

func TestHome(t *testing.T) {
	html := render(t, Home(HomeData{Page: testPage()}))

	assert.Contains(t, html, "Profile Management")
	assert.Contains(t, html, `href="/login"`)
	assert.Contains(t, html, `href="/profile"`)
}

func TestLogin_Modes(t *testing.T) {
	login := render(t, Login(LoginData{Page: testPage(), Email: "ada@example.com", Error: "Invalid email or password."}))
	assert.Contains(t, login, "Welcome Back")
	assert.Contains(t, login, `action="/login"`)
	assert.Contains(t, login, `value="ada@example.com"`)
	assert.Contains(t, login, "Invalid email or password.")
	assert.NotContains(t, login, `name="username"`)

	register := render(t, Login(LoginData{Page: testPage(), Register: true}))
	assert.Contains(t, register, "Create Account")
	assert.Contains(t, register, `action="/register"`)
	assert.Contains(t, register, `name="username"`)
	assert.Contains(t, register, `name="firstname"`)
}

func TestLogin_NilAuthContext(t *testing.T) {
	html := render(t, Login(LoginData{Page: Page{Meta: layout.PageMeta{Title: "x"}}}))
	assert.Contains(t, html, `href="/login"`)
}

func TestProfile_Avatar(t *testing.T) {
	page := testPage()
	page.Auth = &auth.Context{IsAuthenticated: true, User: &auth.UserData{Email: "ada@example.com"}}

	withImage := render(t, Profile(ProfileData{
		Page:    page,
		APIBase: "https://api.example.com",
		Profile: ProfileForm{ID: "7", Firstname: "Ada", ProfileImage: "/uploads/7-me.png"},
	}))
	assert.Contains(t, withImage, `src="https://api.example.com/uploads/7-me.png"`)
	assert.NotContains(t, withImage, " disabled>Remove Image")

	initials := render(t, Profile(ProfileData{
		Page:    page,
		Profile: ProfileForm{ID: "7", Firstname: "ada", Lastname: "lovelace"},
	}))
	assert.Contains(t, initials, ">AL<")
	assert.Contains(t, initials, " disabled>Remove Image")

	fallback := render(t, Profile(ProfileData{Page: page}))
	assert.Contains(t, fallback, ">U<")
}

func TestProfile_EscapesMessages(t *testing.T) {
	html := render(t, Profile(ProfileData{Page: testPage(), Error: "<script>x</script>"}))

	assert.NotContains(t, html, "<script>x</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

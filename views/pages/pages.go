// Package pages renders the site's HTML pages as templ components.
package pages

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/views/helpers"
	"github.com/loganlanou/profiledesk/views/layout"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"classes": helpers.Classes,
	"classIf": helpers.ClassIf,
}

var (
	homeTmpl    = parse("home.html")
	loginTmpl   = parse("login.html")
	profileTmpl = parse("profile.html")
)

func parse(page string) *template.Template {
	return template.Must(template.New(page).Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html",
		"templates/"+page,
	))
}

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Page is the data every page layout needs
type Page struct {
	Meta layout.PageMeta
	Auth *auth.Context
}

type HomeData struct {
	Page
}

// ButtonClass is the shared base class of the home page links
func (HomeData) ButtonClass() string {
	return "rounded px-4 py-2"
}

func Home(data HomeData) templ.Component {
	return component(homeTmpl, data)
}

// LoginData drives both the login and the register mode of the login page.
// Field values are echoed back so a failed submit keeps what was typed.
type LoginData struct {
	Page
	Register  bool
	Error     string
	Success   string
	Username  string
	Firstname string
	Lastname  string
	Email     string
}

func Login(data LoginData) templ.Component {
	return component(loginTmpl, data)
}

// ProfileForm is the profile as currently shown on the page
type ProfileForm struct {
	ID           string
	Firstname    string
	Lastname     string
	Email        string
	ProfileImage string
}

type ProfileData struct {
	Page
	Profile ProfileForm
	// APIBase is the browser-facing API origin profile images are served from
	APIBase string
	Error   string
	Success string
}

func (d ProfileData) AvatarSrc() string {
	return helpers.ImageSrc(d.APIBase, d.Profile.ProfileImage)
}

func (d ProfileData) Initials() string {
	return helpers.Initials(d.Profile.Firstname, d.Profile.Lastname)
}

func Profile(data ProfileData) templ.Component {
	return component(profileTmpl, data)
}

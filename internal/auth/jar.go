package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/loganlanou/profiledesk/internal/session"
)

// cookieJar holds one browser's upstream API cookies for the duration of a request
type cookieJar struct {
	jar *cookiejar.Jar
	url *url.URL
}

func newJar(baseURL string, cookies []session.Cookie) *cookieJar {
	// cookiejar.New only fails on invalid options
	jar, _ := cookiejar.New(nil)

	u, err := url.Parse(baseURL + "/api/user/profile")
	if err != nil || u.Host == "" {
		return &cookieJar{jar: jar}
	}

	seeded := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		seeded = append(seeded, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, seeded)

	return &cookieJar{jar: jar, url: u}
}

func (j *cookieJar) collect() []session.Cookie {
	if j.url == nil {
		return nil
	}
	var out []session.Cookie
	for _, c := range j.jar.Cookies(j.url) {
		out = append(out, session.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

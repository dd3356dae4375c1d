package layout

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	SiteName           = "Profile Desk"
	defaultDescription = "Manage your personal information and profile image."
)

// PageMeta contains the head metadata for a page
type PageMeta struct {
	Title        string
	Description  string
	CanonicalURL string
	SiteName     string
	SiteURL      string
}

// NewPageMeta creates a PageMeta with site-wide defaults
// Chain .WithTitle() to name the page
func NewPageMeta(c echo.Context, siteURL string) PageMeta {
	return PageMeta{
		Title:        SiteName,
		Description:  defaultDescription,
		CanonicalURL: BuildAbsoluteURL(siteURL, c.Request().URL.Path),
		SiteName:     SiteName,
		SiteURL:      siteURL,
	}
}

// WithTitle sets the page title, suffixed with the site name
func (pm PageMeta) WithTitle(title string) PageMeta {
	if title != "" {
		pm.Title = title + " - " + pm.SiteName
	}
	return pm
}

// WithDescription overrides the meta description
func (pm PageMeta) WithDescription(description string) PageMeta {
	if description != "" {
		pm.Description = description
	}
	return pm
}

// BuildAbsoluteURL constructs an absolute URL from a path
func BuildAbsoluteURL(siteURL, path string) string {
	// Handle empty path
	if path == "" {
		return siteURL
	}

	// Handle already absolute URLs
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	// Remove trailing slash from site URL
	siteURL = strings.TrimRight(siteURL, "/")

	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return siteURL + path
}

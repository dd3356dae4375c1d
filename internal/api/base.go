package api

import "strings"

// ResolveBrowserBase returns the API base URL as seen by the browser.
// In development the API is reached through this server's own /api proxy,
// so the base is empty (same origin).
func ResolveBrowserBase(development bool, configured string) string {
	if development {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(configured), "/")
}

// ResolveServerBase returns the API base URL used for server-side calls.
// A same-origin browser base resolves to this server's own URL.
func ResolveServerBase(browserBase, selfURL string) string {
	if browserBase != "" {
		return browserBase
	}
	return strings.TrimRight(strings.TrimSpace(selfURL), "/")
}

package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Initials returns the upper-cased first letters of first and last name,
// or "U" when both are empty
func Initials(firstname, lastname string) string {
	initials := firstRune(firstname) + firstRune(lastname)
	if initials == "" {
		return "U"
	}
	return strings.ToUpper(initials)
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// ImageSrc joins the browser-facing API base with a profile image path.
// An empty base yields a same-origin path.
func ImageSrc(apiBase, profileImage string) string {
	if profileImage == "" {
		return ""
	}
	if strings.HasPrefix(profileImage, "http://") || strings.HasPrefix(profileImage, "https://") {
		return profileImage
	}
	return apiBase + profileImage
}

// Classes merges tailwind class lists; later classes win conflicts
func Classes(classes ...string) string {
	return twmerge.Merge(classes...)
}

// ClassIf returns class when cond holds
func ClassIf(cond bool, class string) string {
	if cond {
		return class
	}
	return ""
}

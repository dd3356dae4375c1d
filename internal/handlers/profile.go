package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/views/pages"
)

const (
	msgLoadFailed     = "Failed to load profile."
	msgUpdateFailed   = "Failed to update profile."
	msgUpdated        = "Profile updated successfully."
	msgSelectImage    = "Please select an image file."
	msgImagesOnly     = "Only image files are allowed."
	msgUploadFailed   = "Failed to upload image."
	msgImageUpdated   = "Profile image updated."
	msgRemoveFailed   = "Failed to remove image."
	msgImageRemoved   = "Profile image removed."
	multipartMemLimit = 1 << 20
)

// ProfileHandler serves the profile editor. Every form on the page posts the
// profile as currently displayed, so each action re-renders from that local
// copy rather than refetching.
type ProfileHandler struct {
	cfg Config
}

func NewProfileHandler(cfg Config) *ProfileHandler {
	return &ProfileHandler{cfg: cfg}
}

func (h *ProfileHandler) render(c echo.Context, local pages.ProfileForm, errMsg, successMsg string) error {
	return Render(c, pages.Profile(pages.ProfileData{
		Page:    h.cfg.page(c, "User Profile"),
		Profile: local,
		APIBase: h.cfg.BrowserAPIBase,
		Error:   errMsg,
		Success: successMsg,
	}))
}

// HandleProfile fetches the profile fresh from the API
func (h *ProfileHandler) HandleProfile(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}

	profile, err := sess.API().GetProfile(c.Request().Context())
	syncCookies(c, sess)
	if api.IsUnauthorized(err) {
		return logoutAndRedirect(c, sess)
	}
	if err != nil {
		slog.Warn("failed to load profile", "session_id", sess.ID(), "error", err)
		return h.render(c, pages.ProfileForm{}, api.MessageOr(err, msgLoadFailed), "")
	}

	return h.render(c, formFromProfile(profile), "", "")
}

// HandleSaveProfile sends the edited names and email. On failure the
// submitted values stay on screen.
func (h *ProfileHandler) HandleSaveProfile(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	local, err := h.readLocal(c)
	if err != nil {
		return h.render(c, local, msgUpdateFailed, "")
	}

	updated, err := sess.API().UpdateProfile(c.Request().Context(), api.ProfileUpdate{
		Firstname: local.Firstname,
		Lastname:  local.Lastname,
		Email:     local.Email,
	})
	syncCookies(c, sess)
	if api.IsUnauthorized(err) {
		return logoutAndRedirect(c, sess)
	}
	if err != nil {
		slog.Info("profile update rejected", "session_id", sess.ID(), "error", err)
		return h.render(c, local, api.MessageOr(err, msgUpdateFailed), "")
	}

	local.Firstname = updated.Firstname
	local.Lastname = updated.Lastname
	local.Email = updated.Email
	return h.render(c, local, "", msgUpdated)
}

// HandleUploadImage replaces the profile image with the submitted file
func (h *ProfileHandler) HandleUploadImage(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	local, err := h.readLocal(c)
	if err != nil {
		return h.render(c, local, msgUploadFailed, "")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return h.render(c, local, msgSelectImage, "")
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return h.render(c, local, msgImagesOnly, "")
	}

	file, err := fh.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err)
		return h.render(c, local, msgUploadFailed, "")
	}
	defer file.Close()

	imageURL, err := sess.API().UploadProfileImage(c.Request().Context(), api.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        file,
	})
	syncCookies(c, sess)
	if api.IsUnauthorized(err) {
		return logoutAndRedirect(c, sess)
	}
	if err != nil {
		slog.Warn("profile image upload failed", "session_id", sess.ID(), "error", err)
		return h.render(c, local, api.MessageOr(err, msgUploadFailed), "")
	}

	local.ProfileImage = imageURL
	return h.render(c, local, "", msgImageUpdated)
}

// HandleRemoveImage clears the profile image
func (h *ProfileHandler) HandleRemoveImage(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	local, err := h.readLocal(c)
	if err != nil {
		return h.render(c, local, msgRemoveFailed, "")
	}

	err = sess.API().DeleteProfileImage(c.Request().Context())
	syncCookies(c, sess)
	if api.IsUnauthorized(err) {
		return logoutAndRedirect(c, sess)
	}
	if err != nil {
		slog.Warn("profile image removal failed", "session_id", sess.ID(), "error", err)
		return h.render(c, local, api.MessageOr(err, msgRemoveFailed), "")
	}

	local.ProfileImage = ""
	return h.render(c, local, "", msgImageRemoved)
}

// readLocal parses the posted form, bounded by UploadMaxSize, and returns the
// profile the page was showing
func (h *ProfileHandler) readLocal(c echo.Context) (pages.ProfileForm, error) {
	req := c.Request()
	if h.cfg.UploadMaxSize > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.cfg.UploadMaxSize)
	}

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := req.ParseMultipartForm(multipartMemLimit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				slog.Info("profile form too large", "limit", tooLarge.Limit)
			} else {
				slog.Warn("failed to parse profile form", "error", err)
			}
			return pages.ProfileForm{}, err
		}
	}

	return pages.ProfileForm{
		ID:           c.FormValue("id"),
		Firstname:    c.FormValue("firstname"),
		Lastname:     c.FormValue("lastname"),
		Email:        c.FormValue("email"),
		ProfileImage: c.FormValue("profileImage"),
	}, nil
}

func formFromProfile(p *api.Profile) pages.ProfileForm {
	form := pages.ProfileForm{
		ID:        string(p.ID),
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Email:     p.Email,
	}
	if p.ProfileImage != nil {
		form.ProfileImage = *p.ProfileImage
	}
	return form
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	pathUser         = "/api/user"
	pathLogin        = "/api/user/login"
	pathLogout       = "/api/user/logout"
	pathProfile      = "/api/user/profile"
	pathProfileImage = "/api/user/profile/image"
)

// RegisterRequest is the body of an account creation
type RegisterRequest struct {
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Profile is the server-held user record
type Profile struct {
	ID           FlexString `json:"id"`
	Firstname    string     `json:"firstname"`
	Lastname     string     `json:"lastname"`
	Email        string     `json:"email"`
	ProfileImage *string    `json:"profileImage"`
}

// ProfileUpdate is the editable subset of a profile
type ProfileUpdate struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// ImageUpload is a file to send as the profile image
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// FlexString accepts a JSON string, number or null
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*f = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id is neither string nor number: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	req, err := jsonRequest("register", http.MethodPost, pathUser, in)
	if err != nil {
		return err
	}
	return c.call(ctx, req, nil)
}

// Login authenticates with the API. Only HTTP 200 counts as success; the
// API sets its session cookie on the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	req, err := jsonRequest("login", http.MethodPost, pathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	status, _, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &ResponseError{StatusCode: status}
	}
	return nil
}

// Logout clears the API session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	status, _, err := c.send(ctx, request{
		endpoint: "logout",
		method:   http.MethodPost,
		path:     pathLogout,
	})
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return statusError(status, "")
	}
	return nil
}

// GetProfile fetches the current user's profile
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	err := c.call(ctx, request{
		endpoint: "get_profile",
		method:   http.MethodGet,
		path:     pathProfile,
	}, &p)
	if err != nil {
		return nil, err
	}
	normalizeImage(&p)
	return &p, nil
}

// UpdateProfile saves the editable fields and returns the server's view of them
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Profile, error) {
	req, err := jsonRequest("update_profile", http.MethodPut, pathProfile, in)
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := c.call(ctx, req, &p); err != nil {
		return nil, err
	}
	normalizeImage(&p)
	return &p, nil
}

// UploadProfileImage sends the image as multipart field "file" and returns
// the new image reference.
func (c *Client) UploadProfileImage(ctx context.Context, in ImageUpload) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(in.Filename)))
	header.Set("Content-Type", in.ContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, in.Body); err != nil {
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	err = c.call(ctx, request{
		endpoint:    "upload_profile_image",
		method:      http.MethodPost,
		path:        pathProfileImage,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// DeleteProfileImage clears the stored profile image
func (c *Client) DeleteProfileImage(ctx context.Context) error {
	return c.call(ctx, request{
		endpoint: "delete_profile_image",
		method:   http.MethodDelete,
		path:     pathProfileImage,
	}, nil)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func normalizeImage(p *Profile) {
	if p.ProfileImage != nil && *p.ProfileImage == "" {
		p.ProfileImage = nil
	}
}

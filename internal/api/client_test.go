package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"

	"github.com/loganlanou/profiledesk/internal/api/apitest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJarClient(t *testing.T, base string, opts ...Option) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return New(base, opts...).WithJar(jar)
}

func TestResolveBrowserBase(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		configured  string
		want        string
	}{
		{"development is same origin", true, "https://api.example.com", ""},
		{"production uses configured", false, "https://api.example.com", "https://api.example.com"},
		{"production trims whitespace and slash", false, "  https://api.example.com/ ", "https://api.example.com"},
		{"production unset", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBrowserBase(tt.development, tt.configured))
		})
	}
}

func TestResolveServerBase(t *testing.T) {
	assert.Equal(t, "https://api.example.com", ResolveServerBase("https://api.example.com", "http://localhost:8000"))
	assert.Equal(t, "http://localhost:8000", ResolveServerBase("", "http://localhost:8000/"))
}

func TestLogin_SetsCookieOnSuccess(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.AddUser(apitest.User{Email: "ada@example.com", Password: "secret"})

	client := newJarClient(t, fake.URL)
	require.NoError(t, client.Login(context.Background(), "ada@example.com", "secret"))

	profile, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.Email)
}

func TestLogin_OnlyStatus200Succeeds(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.Respond("POST /api/user/login", http.StatusNoContent, nil)

	err := newJarClient(t, fake.URL).Login(context.Background(), "ada@example.com", "secret")

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNoContent, respErr.StatusCode)
}

func TestLogin_WrongPasswordIsNotUnauthorizedSentinel(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.AddUser(apitest.User{Email: "ada@example.com", Password: "secret"})

	err := newJarClient(t, fake.URL).Login(context.Background(), "ada@example.com", "nope")

	require.Error(t, err)
	assert.False(t, IsUnauthorized(err), "a failed login must not be treated as an expired session")
}

func TestGetProfile_Unauthorized(t *testing.T) {
	fake := apitest.NewServer(t)

	_, err := newJarClient(t, fake.URL).GetProfile(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetProfile_NumericIDAndEmptyImage(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.Respond("GET /api/user/profile", http.StatusOK, map[string]any{
		"id":           42,
		"firstname":    "Ada",
		"lastname":     nil,
		"email":        "ada@example.com",
		"profileImage": "",
	})

	profile, err := newJarClient(t, fake.URL).GetProfile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, FlexString("42"), profile.ID)
	assert.Equal(t, "", profile.Lastname)
	assert.Nil(t, profile.ProfileImage)
}

func TestUpdateProfile_ServerMessage(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.Respond("PUT /api/user/profile", http.StatusConflict, map[string]string{"message": "Email taken"})

	_, err := newJarClient(t, fake.URL).UpdateProfile(context.Background(), ProfileUpdate{Email: "taken@example.com"})

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusConflict, respErr.StatusCode)
	assert.Equal(t, "Email taken", MessageOr(err, "Failed to update profile."))
}

func TestRegister_ErrorWithoutMessageFallsBack(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.Override("POST /api/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	err := newJarClient(t, fake.URL).Register(context.Background(), RegisterRequest{Email: "a@b.c"})

	require.Error(t, err)
	assert.Equal(t, "Register failed", MessageOr(err, "Register failed"))
}

func TestRegister_SuccessWithUnparseableBodyIsAnError(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.Override("POST /api/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	err := newJarClient(t, fake.URL).Register(context.Background(), RegisterRequest{Email: "a@b.c"})

	require.Error(t, err)
	var respErr *ResponseError
	assert.False(t, errors.As(err, &respErr), "parse failures are not server-reported errors")
}

func TestUploadProfileImage_SendsMultipartFile(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.AddUser(apitest.User{Email: "ada@example.com", Password: "secret"})
	client := newJarClient(t, fake.URL)
	require.NoError(t, client.Login(context.Background(), "ada@example.com", "secret"))

	url, err := client.UploadProfileImage(context.Background(), ImageUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Body:        strings.NewReader("\x89PNG fake"),
	})

	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-me.png", url)
	assert.Equal(t, "image/png", fake.LastImageContentType())
}

func TestDeleteProfileImage(t *testing.T) {
	fake := apitest.NewServer(t)
	fake.AddUser(apitest.User{Email: "ada@example.com", Password: "secret", ProfileImage: "/uploads/x.png"})
	client := newJarClient(t, fake.URL)
	require.NoError(t, client.Login(context.Background(), "ada@example.com", "secret"))

	require.NoError(t, client.DeleteProfileImage(context.Background()))

	u, _ := fake.UserByEmail("ada@example.com")
	assert.Empty(t, u.ProfileImage)
}

func TestTransportFailure(t *testing.T) {
	fake := apitest.NewServer(t)
	base := fake.URL
	fake.Close()

	err := newJarClient(t, base).Logout(context.Background())

	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "Failed", MessageOr(err, "Failed"))
}

func TestMetrics_CountsByEndpointAndClass(t *testing.T) {
	fake := apitest.NewServer(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := newJarClient(t, fake.URL, WithMetrics(metrics))

	_, _ = client.GetProfile(context.Background())
	_, _ = client.GetProfile(context.Background())

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("get_profile", "4xx")))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "error", statusClass(0))
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "5xx", statusClass(503))
}

package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/server"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "root@example.com"
	adminPassword = "Adm1nPassword"
)

type testEnv struct {
	srv   *server.Server
	ts    *httptest.Server
	clock time.Time
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	env := &testEnv{clock: time.Now()}
	env.srv, err = server.New(cfg, server.WithNowFunc(func() time.Time { return env.clock }))
	require.NoError(t, err)

	_, err = env.srv.CreateUser(users.User{Email: adminEmail, Roles: []users.RoleType{users.RoleSuperAdmin}}, adminPassword)
	require.NoError(t, err)

	env.ts = httptest.NewServer(env.srv)
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, accessToken string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) login(t *testing.T) oauthmodel.TokenResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, server.RouteAuthLogin, "", oauthmodel.LoginRequest{ID: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[oauthmodel.TokenResponse](t, resp)
}

func TestLogin(t *testing.T) {
	env := setup(t)

	t.Run("success", func(t *testing.T) {
		tokens := env.login(t)
		require.NotEmpty(t, utils.Value(tokens.AccessToken))
		require.NotEmpty(t, utils.Value(tokens.RefreshToken))
		require.Equal(t, 15*60, tokens.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, server.RouteAuthLogin, "", oauthmodel.LoginRequest{ID: adminEmail, Password: "wrong"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		errResp := decode[oauthmodel.ErrorResponse](t, resp)
		require.Equal(t, oauthmodel.ErrCodeUnauthorized, errResp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, server.RouteAuthLogin, "", "not an object")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	stats := env.srv.Stats()
	require.Equal(t, int64(1), stats.Logins)
	require.Equal(t, int64(2), stats.LoginFailures)
}

func TestRefresh(t *testing.T) {
	env := setup(t)
	tokens := env.login(t)

	resp := env.do(t, http.MethodPost, server.RouteAuthRefresh, "", oauthmodel.RefreshRequest{RefreshToken: *tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decode[oauthmodel.TokenResponse](t, resp)
	require.NotEqual(t, *tokens.RefreshToken, *rotated.RefreshToken)

	// The rotated-out token is no longer accepted
	resp = env.do(t, http.MethodPost, server.RouteAuthRefresh, "", oauthmodel.RefreshRequest{RefreshToken: *tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, oauthmodel.ErrCodeInvalidGrant, decode[oauthmodel.ErrorResponse](t, resp).Error)

	require.Equal(t, 1, env.srv.RevokeRefreshTokens())
	resp = env.do(t, http.MethodPost, server.RouteAuthRefresh, "", oauthmodel.RefreshRequest{RefreshToken: *rotated.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	stats := env.srv.Stats()
	require.Equal(t, int64(3), stats.Refreshes)
	require.Equal(t, int64(2), stats.RefreshFailures)
}

func TestRequireAuth(t *testing.T) {
	env := setup(t)
	tokens := env.login(t)

	t.Run("missing token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, server.RouteRestaurants, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, server.RouteRestaurants, "a.b.c", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, server.RouteMe, *tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		me := decode[users.User](t, resp)
		require.Equal(t, adminEmail, me.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		later := env.clock.Add(time.Hour)
		env.srv.SetNowFunc(func() time.Time { return later })
		defer env.srv.SetNowFunc(func() time.Time { return env.clock })

		resp := env.do(t, http.MethodGet, server.RouteRestaurants, *tokens.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Token expired", decode[oauthmodel.ErrorResponse](t, resp).ErrorDescription)
	})

	t.Run("restaurant owner is forbidden", func(t *testing.T) {
		_, err := env.srv.CreateUser(users.User{Email: "owner@example.com", Roles: []users.RoleType{users.RoleRestaurantOwner}}, "OwnerPass1")
		require.NoError(t, err)
		resp := env.do(t, http.MethodPost, server.RouteAuthLogin, "", oauthmodel.LoginRequest{ID: "owner@example.com", Password: "OwnerPass1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		owner := decode[oauthmodel.TokenResponse](t, resp)

		resp = env.do(t, http.MethodGet, server.RouteRestaurants, *owner.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	env := setup(t)
	tokens := env.login(t)

	resp := env.do(t, http.MethodPost, server.RouteAuthLogout, *tokens.AccessToken, oauthmodel.RefreshRequest{RefreshToken: *tokens.RefreshToken})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, server.RouteMe, *tokens.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, server.RouteAuthRefresh, "", oauthmodel.RefreshRequest{RefreshToken: *tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWellKnownOpenIDConfig(t *testing.T) {
	env := setup(t)

	resp := env.do(t, http.MethodGet, server.RouteWellKnownOpenIDConfig, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	require.Equal(t, env.ts.URL, doc["issuer"])
	require.Equal(t, env.ts.URL+server.RouteAuthRefresh, doc["token_endpoint"])
	require.Equal(t, env.ts.URL+server.RouteAuthLogin, doc["login_endpoint"])
}

func TestRestaurants(t *testing.T) {
	env := setup(t)
	access := *env.login(t).AccessToken

	resp := env.do(t, http.MethodPost, server.RouteRestaurants, access, models.Restaurant{Name: "Pizza Place", Email: "pizza@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Restaurant](t, resp)
	require.NotEmpty(t, created.ID)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, server.RouteRestaurants, access, models.Restaurant{Name: "Copy", Email: "PIZZA@example.com"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing name", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, server.RouteRestaurants, access, models.Restaurant{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("set active", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/restaurants/"+created.ID+"/active", access, map[string]bool{"active": true})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[models.Restaurant](t, resp).Active)
	})

	t.Run("share credentials", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/restaurants/"+created.ID+"/credentials/share", access, map[string]string{"email": "chef@example.com"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		share := decode[models.CredentialShare](t, resp)
		require.Equal(t, created.ID, share.RestaurantID)
		require.NotEmpty(t, share.TemporaryPassword)

		resp = env.do(t, http.MethodPost, server.RouteAuthLogin, "", oauthmodel.LoginRequest{ID: "chef@example.com", Password: share.TemporaryPassword})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list then delete", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, server.RouteRestaurants, access, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decode[[]models.Restaurant](t, resp), 1)

		resp = env.do(t, http.MethodDelete, "/restaurants/"+created.ID, access, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/restaurants/"+created.ID, access, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCouponsAndBugReports(t *testing.T) {
	env := setup(t)
	access := *env.login(t).AccessToken

	resp := env.do(t, http.MethodPost, server.RouteCoupons, access, models.Coupon{Code: "SPRING", Percent: 150, ExpiresAt: env.clock.Add(time.Hour)})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, server.RouteCoupons, access, models.Coupon{Code: "SPRING", Percent: 15, ExpiresAt: env.clock.Add(time.Hour)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, server.RouteBugReports+"?status=open", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	open := decode[[]models.BugReport](t, resp)
	require.Len(t, open, 1)

	resp = env.do(t, http.MethodPatch, "/bug-reports/"+open[0].ID, access, map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, models.BugStatusResolved, decode[models.BugReport](t, resp).Status)

	resp = env.do(t, http.MethodGet, server.RouteBugReports+"?status=bogus", access, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBannerUpload(t *testing.T) {
	env := setup(t)
	access := *env.login(t).AccessToken

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Summer sale"))
	part, err := mw.CreateFormFile("file", "summer.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.ts.URL+server.RouteBanners, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := env.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	banner := decode[models.Banner](t, resp)
	require.Equal(t, "Summer sale", banner.Name)
	require.Equal(t, "summer.png", banner.Filename)
	require.Equal(t, int64(16), banner.Size)
}

func TestLocations(t *testing.T) {
	env := setup(t)
	access := *env.login(t).AccessToken

	resp := env.do(t, http.MethodGet, server.RouteLocations+"?q=lon", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	locations := decode[[]models.Location](t, resp)
	require.Len(t, locations, 1)
	require.Equal(t, "London", locations[0].Name)
}

func TestRequestIDEchoed(t *testing.T) {
	env := setup(t)

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+server.RouteWellKnownOpenIDConfig, nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := env.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

package adminapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/adminapi"
	"github.com/jrsteele09/go-admin-client/apiclient"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/jrsteele09/go-admin-client/server"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "dashboard@example.com"
	adminPassword = "Dashb0ardPass"
)

type testEnv struct {
	srv    *server.Server
	client *apiclient.Client
	admin  *adminapi.Admin
	now    time.Time
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	env := &testEnv{now: time.Now()}
	env.srv, err = server.New(cfg, server.WithNowFunc(func() time.Time { return env.now }))
	require.NoError(t, err)
	_, err = env.srv.CreateUser(users.User{Email: adminEmail, Roles: []users.RoleType{users.RoleSuperAdmin}}, adminPassword)
	require.NoError(t, err)

	ts := httptest.NewServer(env.srv)
	t.Cleanup(ts.Close)

	env.client, err = apiclient.New(ts.URL, apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	_, err = env.client.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	env.admin = adminapi.New(env.client, adminapi.WithNowFunc(func() time.Time { return env.now }))
	return env
}

func TestRestaurants_Lifecycle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	restaurants := env.admin.Restaurants

	created, err := restaurants.Create(ctx, models.Restaurant{Name: "Blue Door", Email: "hello@bluedoor.example", City: "Leeds"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = restaurants.Create(ctx, models.Restaurant{Name: "Copycat", Email: "hello@bluedoor.example"})
	require.Equal(t, http.StatusConflict, apiclient.StatusCode(err))

	got, err := restaurants.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Blue Door", got.Name)

	got.Phone = "0113 000 0000"
	updated, err := restaurants.Update(ctx, got)
	require.NoError(t, err)
	require.Equal(t, "0113 000 0000", updated.Phone)

	toggled, err := restaurants.SetActive(ctx, created.ID, !updated.Active)
	require.NoError(t, err)
	require.Equal(t, !updated.Active, toggled.Active)

	share, err := restaurants.ShareCredentials(ctx, created.ID, "owner@bluedoor.example")
	require.NoError(t, err)
	require.Equal(t, created.ID, share.RestaurantID)
	require.NotEmpty(t, share.TemporaryPassword)

	list, err := restaurants.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, restaurants.Delete(ctx, created.ID))
	_, err = restaurants.Get(ctx, created.ID)
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
}

func TestRestaurants_ValidatesBeforeSending(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.admin.Restaurants.Create(ctx, models.Restaurant{Email: "nobody@example.com"})
	require.Error(t, err)
	require.Zero(t, apiclient.StatusCode(err))

	_, err = env.admin.Restaurants.Update(ctx, models.Restaurant{Name: "No ID"})
	require.Error(t, err)

	_, err = env.admin.Restaurants.ShareCredentials(ctx, "any", "not-an-email")
	require.Error(t, err)
}

func TestRestaurants_ListPages(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	for i, name := range []string{"One", "Two", "Three"} {
		at := env.now.Add(time.Duration(i+1) * time.Second)
		env.srv.SetNowFunc(func() time.Time { return at })
		_, err := env.admin.Restaurants.Create(ctx, models.Restaurant{Name: name})
		require.NoError(t, err)
	}

	page, err := env.admin.Restaurants.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "Two", page[0].Name)
}

func TestCoupons(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.admin.Coupons.Create(ctx, models.Coupon{Code: "SPRING", Percent: 150, ExpiresAt: env.now.Add(time.Hour)})
	require.Error(t, err)
	_, err = env.admin.Coupons.Create(ctx, models.Coupon{Code: "OLD", Percent: 10, ExpiresAt: env.now.Add(-time.Hour)})
	require.Error(t, err)

	created, err := env.admin.Coupons.Create(ctx, models.Coupon{Code: "SPRING", Percent: 15, ExpiresAt: env.now.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = env.admin.Coupons.Create(ctx, models.Coupon{Code: "SPRING", Percent: 20, ExpiresAt: env.now.Add(24 * time.Hour)})
	require.Equal(t, http.StatusConflict, apiclient.StatusCode(err))

	list, err := env.admin.Coupons.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestBugReports(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	all, err := env.admin.BugReports.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	open, err := env.admin.BugReports.List(ctx, models.BugStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)

	resolved, err := env.admin.BugReports.UpdateStatus(ctx, open[0].ID, models.BugStatusResolved)
	require.NoError(t, err)
	require.Equal(t, models.BugStatusResolved, resolved.Status)

	_, err = env.admin.BugReports.UpdateStatus(ctx, open[0].ID, "closed")
	require.Error(t, err)

	_, err = env.admin.BugReports.UpdateStatus(ctx, "missing", models.BugStatusRejected)
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
}

func TestBanners(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	banner, err := env.admin.Banners.Upload(ctx, "Summer", "summer.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "Summer", banner.Name)
	require.Equal(t, "summer.png", banner.Filename)
	require.Equal(t, int64(len("png-bytes")), banner.Size)

	list, err := env.admin.Banners.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, env.admin.Banners.Delete(ctx, banner.ID))
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(env.admin.Banners.Delete(ctx, banner.ID)))
}

func TestLocations_Lookup(t *testing.T) {
	env := setup(t)

	matches, err := env.admin.Locations.Lookup(context.Background(), "lyo")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "loc-lyo", matches[0].ID)
}

func TestAdmin_RefreshesExpiredSession(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.srv.SetNowFunc(func() time.Time { return env.now.Add(time.Hour) })

	_, err := env.admin.Locations.Lookup(ctx, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), env.srv.Stats().Refreshes)
}

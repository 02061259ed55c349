package main

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-admin-client/adminapi"
	"github.com/jrsteele09/go-admin-client/apiclient"
	"github.com/jrsteele09/go-admin-client/credstore"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/jrsteele09/go-admin-client/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRun_TypedCommands(t *testing.T) {
	t.Setenv("ADMIN_ID", "cli@example.com")
	t.Setenv("ADMIN_PASSWORD", "CliPassw0rd")
	seedCfg, err := config.Load("")
	require.NoError(t, err)
	srv, err := server.New(seedCfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	credentials := filepath.Join(t.TempDir(), "credentials.json")
	t.Setenv("API_BASE_URL", ts.URL)
	t.Setenv("CREDENTIALS_FILE", credentials)
	cfg, err := config.Load("")
	require.NoError(t, err)

	ctx := context.Background()
	exec := func(args ...string) error { return run(ctx, cfg, args, "", "") }

	require.NoError(t, exec("login"))
	require.NoError(t, exec("restaurant", "create", "Blue Door", "hi@bluedoor.example", "Leeds"))
	require.Error(t, exec("restaurant", "create", ""))

	client, err := apiclient.New(ts.URL, apiclient.WithStore(credstore.NewFileStore(credentials)), apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	admin := adminapi.New(client)

	list, err := admin.Restaurants.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	require.NoError(t, exec("restaurant", "activate", id))
	require.NoError(t, exec("restaurant", "update", id, `{"name":"Blue Door Leeds","active":true}`))
	got, err := admin.Restaurants.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Active)
	require.Equal(t, "Blue Door Leeds", got.Name)

	require.NoError(t, exec("restaurant", "share", id, "owner@bluedoor.example"))

	require.NoError(t, exec("coupon", "create", "SPRING", "15", "24h"))
	require.Error(t, exec("coupon", "create", "HUGE", "150", "24h"))
	coupons, err := admin.Coupons.List(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 1)

	open, err := admin.BugReports.List(ctx, models.BugStatusOpen)
	require.NoError(t, err)
	require.NotEmpty(t, open)
	require.NoError(t, exec("bug", "status", open[0].ID, string(models.BugStatusResolved)))
	require.Error(t, exec("bug", "status", open[0].ID, "closed"))

	require.NoError(t, exec("restaurant", "delete", id))
	require.Error(t, exec("restaurant", "get", id))

	require.NoError(t, exec("logout"))
	require.Error(t, exec("restaurants"))
}

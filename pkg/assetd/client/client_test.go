package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/assetd/internal/api"
	"evalgo.org/assetd/internal/config"
	"evalgo.org/assetd/internal/storage/storagetest"
	"evalgo.org/assetd/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		Import:   config.ImportConfig{MaxUploadSize: 1 << 20},
	}
	srv := httptest.NewServer(api.New(cfg, storagetest.New(t), zerolog.Nop(), nil))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New("http://localhost:8095/", WithToken("abc"), WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8095", c.baseURL)
	assert.Equal(t, "abc", c.token)
	assert.Same(t, http.DefaultClient, c.httpClient)
}

func TestAssetRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.CreateAsset(ctx, &models.Asset{
		Code:     models.Ptr("pc-1"),
		Name:     models.Ptr("Desk"),
		Hostname: models.Ptr("desk-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PC1", *created.Code)

	got, err := c.GetAsset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk", *got.Name)

	page, err := c.ListAssets(ctx, AssetQuery{Search: "desk"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	successor, err := c.ReplaceAsset(ctx, created.ID, "pc-2", nil)
	require.NoError(t, err)
	assert.Equal(t, "PC2", *successor.Code)
	assert.Equal(t, "desk-1", models.Deref(successor.Hostname))

	old, err := c.GetAsset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReplaced, old.Status)

	require.NoError(t, c.DeleteAsset(ctx, successor.ID))
}

func TestErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetAsset(ctx, 999)
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err), "got %v", err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.CreateAsset(ctx, &models.Asset{Code: models.Ptr("PC1")})
	require.NoError(t, err)
	_, err = c.CreateAsset(ctx, &models.Asset{Code: models.Ptr("pc 1")})
	assert.True(t, errdefs.IsConflict(err), "got %v", err)

	_, err = c.AvailableIPs(ctx, 0)
	assert.True(t, errdefs.IsInvalidArgument(err), "got %v", err)
}

func TestDecodeErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	err = c.Health(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.True(t, errdefs.IsUnknown(err))
}

// Package storagetest opens throwaway databases for tests.
package storagetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"evalgo.org/assetd/internal/config"
	"evalgo.org/assetd/internal/storage"
)

var seq atomic.Int64

// New returns a migrated storage backed by a private in-memory SQLite
// database that is closed when the test ends.
func New(t testing.TB) *storage.Storage {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", seq.Add(1))
	s, err := storage.Open(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         dsn,
		AutoMigrate: true,
	}, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

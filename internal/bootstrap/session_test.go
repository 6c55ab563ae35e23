package bootstrap

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-go/config"
	"github.com/careconnect/careconnect-go/internal/adapters/filestore"
	"github.com/careconnect/careconnect-go/internal/adapters/memstore"
	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/session"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.AppConfig{}
	cfg.API.BaseURL = "http://127.0.0.1:1/api"
	cfg.Demo.Latency = -1
	cfg.Store.Backend = config.StoreBackendMemory
	cfg.Sanitize()
	return cfg
}

func TestBuildApp_MemoryBackend(t *testing.T) {
	app, err := BuildApp(testConfig(t), slog.Default())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &memstore.Store{}, app.Store)
	require.NotNil(t, app.Client)
	require.NotNil(t, app.Session)
	require.NotNil(t, app.Bus)

	// The wired stack works end to end for an offline demo login.
	user, err := app.Session.Login(context.Background(), "donor@example.com", domainauth.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleDonor, user.Role)
	assert.Equal(t, session.StateAuthenticated, app.Session.Current().State)
}

func TestBuildApp_FileBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.StoreBackendFile
	cfg.Store.Path = filepath.Join(t.TempDir(), "credentials.json")

	app, err := BuildApp(cfg, slog.Default())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &filestore.Store{}, app.Store)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.API.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("REGPOS_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.lightspeedapp.com", cfg.POS.APIURL)
	require.Equal(t, "5000.00", cfg.Sync.CreditLimit)
	require.Equal(t, "csv", cfg.Export.Format)
	require.Equal(t, 4, cfg.UI.Workers)
	require.False(t, cfg.Sync.Force)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("REGPOS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Registry.URL = "https://registry.example.edu/api"
	cfg.Registry.User = "svc"
	cfg.POS.AccountID = "12345"
	cfg.Sync.CustomFieldPersonID = "11"
	cfg.Sync.CustomFieldSyncTime = "12"
	cfg.Sync.SimulateDelete = true
	cfg.Export.Shop = "Bookstore"
	cfg.Export.Format = "xlsx"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://registry.example.edu/api", loaded.Registry.URL)
	require.Equal(t, "12345", loaded.POS.AccountID)
	require.Equal(t, "11", loaded.Sync.CustomFieldPersonID)
	require.True(t, loaded.Sync.SimulateDelete)
	require.Equal(t, "Bookstore", loaded.Export.Shop)
	require.Equal(t, "xlsx", loaded.Export.Format)
	// defaults survive a save of edited fields
	require.Equal(t, "5000.00", loaded.Sync.CreditLimit)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("REGPOS_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("REGPOS_UI_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8, cfg.UI.Workers)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnet/ack-portal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "portal.db", cfg.Database.Path)
	assert.NotEmpty(t, cfg.Departments)
	assert.True(t, cfg.KnownDepartment("engineering"))
	assert.False(t, cfg.KnownDepartment("warehouse"))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
database:
  path: "/tmp/test.db"
log:
  level: debug
  pretty: true
departments:
  - ops
  - legal
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, []string{"ops", "legal"}, cfg.Departments)
	assert.False(t, cfg.KnownDepartment("engineering"))
}

func TestLoad_RejectsBadConfig(t *testing.T) {
	_, err := config.Load(writeConfig(t, "departments: []\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "departments: [hr, hr]\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "departments: [\n"))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDepartmentIDs_TypedView(t *testing.T) {
	cfg := config.Default()
	ids := cfg.DepartmentIDs()
	require.Len(t, ids, len(cfg.Departments))
	for i, d := range cfg.Departments {
		assert.EqualValues(t, d, ids[i])
	}
}

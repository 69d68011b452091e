package config_test

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ameshkov/nodeadmin/internal/config"
	"github.com/stretchr/testify/require"
)

// writeConfig writes data to a temporary config file and returns its path.
func writeConfig(t *testing.T, data string) (path string) {
	t.Helper()

	path = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/nodeadmin/nodeadmin.db
admin:
  listen-addr: 127.0.0.1
  listen-port: 8080
prometheus:
  addr: 127.0.0.1
  port: 9090
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Nil(t, cfg.Sentry)
	require.Equal(t, uint16(9090), cfg.Prometheus.Port)

	storeCfg, err := cfg.ToStoreConfig()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/nodeadmin/nodeadmin.db", storeCfg.Path)

	adminCfg, err := cfg.ToAdminConfig(nil)
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddrPort("127.0.0.1:8080"), adminCfg.ListenAddr)
}

func TestLoad_invalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{{
		name: "no_database",
		data: "admin:\n  listen-addr: 127.0.0.1\n",
	}, {
		name: "no_database_path",
		data: "database: {}\nadmin:\n  listen-addr: 127.0.0.1\n",
	}, {
		name: "no_admin",
		data: "database:\n  path: a.db\n",
	}, {
		name: "no_prometheus_port",
		data: "database:\n  path: a.db\nadmin:\n  listen-addr: 127.0.0.1\nprometheus:\n  addr: 127.0.0.1\n",
	}, {
		name: "empty_sentry_dsn",
		data: "database:\n  path: a.db\nadmin:\n  listen-addr: 127.0.0.1\nsentry: {}\n",
	}, {
		name: "bad_yaml",
		data: "database: [",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.data))
			require.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFile_ToAdminConfig_badAddr(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "database:\n  path: a.db\nadmin:\n  listen-addr: localhost\n"))
	require.NoError(t, err)

	_, err = cfg.ToAdminConfig(nil)
	require.Error(t, err)
}

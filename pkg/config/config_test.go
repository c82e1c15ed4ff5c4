package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Vipps struct {
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"vipps"`
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shop.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 4100\nvipps:\n  client_id: from-file\n"), 0o600))

	t.Setenv("CONFIG_PATH", file)
	t.Setenv("VIPPS_CLIENT_ID", "from-env")

	cfg, err := Load("shop", Options{
		Defaults:   map[string]interface{}{"server.port": 4000, "vipps.client_id": ""},
		EnvAliases: map[string][]string{"vipps.client_id": {"VIPPS_CLIENT_ID"}},
	})
	require.NoError(t, err)
	assert.Equal(t, file, cfg.ConfigFileUsed())

	var out sample
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, 4100, out.Server.Port)
	assert.Equal(t, "from-env", out.Vipps.ClientID)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("APP_ENV", "missing")
	t.Setenv("SHOP_SERVER_PORT", "4200")

	cfg, err := Load("shop", Options{Defaults: map[string]interface{}{"server.port": 4000}})
	require.NoError(t, err)

	var out sample
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, 4200, out.Server.Port)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOTENV_SHOP_VIPPS_CLIENT_ID=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_SHOP_VIPPS_CLIENT_ID") })
	t.Setenv("CONFIG_PATH", dir)

	cfg, err := Load("dotenv_shop", Options{
		Defaults:    map[string]interface{}{"vipps.client_id": ""},
		DotEnvFiles: []string{filepath.Join(dir, "missing.env"), envFile},
	})
	require.NoError(t, err)

	var out sample
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, "from-dotenv", out.Vipps.ClientID)
}

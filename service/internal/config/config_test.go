package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.Search.Depth)
	assert.Equal(t, "best-ordered", c.Search.Fallback)
	assert.False(t, c.Redis.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"depth too low", func(c *Config) { c.Search.Depth = 0 }, "search.depth"},
		{"depth too high", func(c *Config) { c.Search.Depth = MaxDepth + 1 }, "search.depth"},
		{"opponent", func(c *Config) { c.Search.Opponent = "oracle" }, "search.opponent"},
		{"fallback", func(c *Config) { c.Search.Fallback = "random" }, "search.fallback"},
		{"matches", func(c *Config) { c.Match.Matches = 0 }, "match.matches"},
		{"workers", func(c *Config) { c.Match.Workers = 0 }, "match.workers"},
		{"match opponent", func(c *Config) { c.Match.Opponent = "x" }, "match.opponent"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"redis addr", func(c *Config) { c.Redis = RedisConfig{Enabled: true, Addr: " "} }, "redis.addr"},
		{"redis ttl", func(c *Config) { c.Redis.TTL = -1 }, "redis.ttl_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			err := c.Validate()
			var ic *InvalidConfig
			require.ErrorAs(t, err, &ic)
			assert.Equal(t, tt.field, ic.Field)
		})
	}

	c := DefaultConfig()
	c.Search.Opponent = "neural"
	c.Match.Opponent = "uniform"
	assert.NoError(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	c := DefaultConfig()
	err := c.ApplyEnv(envMap(map[string]string{
		"DARKFOUR_DEPTH":          "3",
		"DARKFOUR_OPPONENT":       "uniform",
		"DARKFOUR_SEED":           "42",
		"DARKFOUR_LOG_JSON":       "true",
		"DARKFOUR_REDIS_ADDR":     "cache:6379",
		"DARKFOUR_WORKERS":        "",
		"DARKFOUR_RECORD_SAMPLES": "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Search.Depth)
	assert.Equal(t, "uniform", c.Search.Opponent)
	assert.Equal(t, uint64(42), c.Match.Seed)
	assert.True(t, c.Log.JSON)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache:6379", c.Redis.Addr)
	assert.Equal(t, 4, c.Match.Workers, "empty values are ignored")
	assert.True(t, c.Match.RecordSamples)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DARKFOUR_DEPTH":         "deep",
		"DARKFOUR_SEED":          "-1",
		"DARKFOUR_KEEP_EXPLORED": "maybe",
	} {
		c := DefaultConfig()
		err := c.ApplyEnv(envMap(map[string]string{key: value}))
		var ic *InvalidConfig
		require.ErrorAs(t, err, &ic, key)
		assert.Equal(t, key, ic.Field)
	}
}

func TestConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c := DefaultConfig()
	c.Search.Depth = 4
	c.Redis.Enabled = true
	require.NoError(t, saveCfgFile(path, &c, 0o600))

	got := DefaultConfig()
	require.NoError(t, readCfgFile(path, &got))
	assert.Equal(t, c, got)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	assert.Error(t, readCfgFile(path, &got))
}

func TestLoadReadsXDGFile(t *testing.T) {
	t.Cleanup(xdg.Reload)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DARKFOUR_MATCHES", "7")
	xdg.Reload()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "darkfour"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfgFile),
		[]byte(`{"search":{"depth":3},"match":{"matches":2}}`), 0o600))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Search.Depth)
	assert.Equal(t, 7, c.Match.Matches, "environment wins over the file")
	assert.Equal(t, "heuristic", c.Search.Opponent, "unset fields keep defaults")
}

func TestConfigureLogger(t *testing.T) {
	c := DefaultConfig()
	c.Log.Level = "debug"
	c.Log.JSON = true
	l := logrus.New()
	require.NoError(t, c.ConfigureLogger(l))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	c.Log.Level = "nope"
	assert.Error(t, c.ConfigureLogger(l))
}

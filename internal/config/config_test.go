package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeTempConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  max_connections: 500
redis:
  addr: "redis:6379"
  password: "secret"
  db: 2
game:
  max_players: 4
  round_time: 20
  max_rounds: 5
  words_per_turn: 3
vocabulary:
  seed_file: "testdata/words.yaml"
  default_language: "ja"
security:
  allowed_origins:
    - "https://example.com"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Server.MaxConnections)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 20, cfg.Game.RoundTime)
	assert.Equal(t, 5, cfg.Game.MaxRounds)
	assert.Equal(t, 3, cfg.Game.WordsPerTurn)
	assert.Equal(t, "testdata/words.yaml", cfg.Vocabulary.SeedFile)
	assert.Equal(t, "ja", cfg.Vocabulary.DefaultLanguage)
	assert.Equal(t, []string{"https://example.com"}, cfg.Security.AllowedOrigins)
}

func TestLoad_PartialConfigUsesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Explicit value kept, everything else falls back to defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultMaxPlayers, cfg.Game.MaxPlayers)
	assert.Equal(t, defaultMinPlayers, cfg.Game.MinPlayers)
	assert.Equal(t, defaultRoundTime, cfg.Game.RoundTime)
	assert.Equal(t, defaultMaxRounds, cfg.Game.MaxRounds)
	assert.Equal(t, defaultWordsPerTurn, cfg.Game.WordsPerTurn)
	assert.Equal(t, defaultBasePoints, cfg.Game.BasePoints)
	assert.Equal(t, defaultSeedFile, cfg.Vocabulary.SeedFile)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "server: [not: valid")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, defaultRoomTimeout, cfg.Game.RoomTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "10.0.0.1")
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("GAME_ROUND_TIME", "15")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.com, https://b.com")

	cfg := Default()

	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.Game.RoundTime)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.Security.AllowedOrigins)
}

func TestEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg := Default()
	assert.Equal(t, defaultPort, cfg.Server.Port)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Duration(defaultRoundTime)*time.Second, cfg.Game.RoundTimeDuration())
	assert.Equal(t, time.Duration(defaultRoomTimeout)*time.Minute, cfg.Game.RoomTimeoutDuration())
	assert.Equal(t, time.Duration(defaultShutdownTimeout)*time.Minute, cfg.Game.ShutdownTimeoutDuration())
	assert.Equal(t, time.Duration(defaultRoomCleanupDelay)*time.Second, cfg.Game.RoomCleanupDelayDuration())
}

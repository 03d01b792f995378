package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 10000
	defaultRedisAddr      = "localhost:6379"

	defaultMaxPlayers   = 8
	defaultMinPlayers   = 2
	defaultRoundTime    = 30 // 秒
	defaultMaxRounds    = 3
	defaultWordsPerTurn = 5
	defaultBasePoints   = 10
	defaultRoomTimeout  = 10 // 分钟

	defaultShutdownTimeout       = 30 // 分钟
	defaultShutdownCheckInterval = 5  // 秒
	defaultRoomCleanupDelay      = 10 // 秒

	defaultSeedFile = "configs/vocabulary.yaml"
	defaultLanguage = "en"
)

// Config 服务端配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Game       GameConfig       `yaml:"game"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Security   SecurityConfig   `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MaxPlayers   int `yaml:"max_players"`    // 房间最大人数
	MinPlayers   int `yaml:"min_players"`    // 开始游戏最少人数
	RoundTime    int `yaml:"round_time"`     // 每回合答题时长（秒）
	MaxRounds    int `yaml:"max_rounds"`     // 总轮数
	WordsPerTurn int `yaml:"words_per_turn"` // 每回合单词数
	BasePoints   int `yaml:"base_points"`    // 答对一词的基础得分
	RoomTimeout  int `yaml:"room_timeout"`   // 房间等待超时（分钟）

	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // 优雅关闭等待时长（分钟）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // 关闭检查间隔（秒）
	RoomCleanupDelay      int `yaml:"room_cleanup_delay"`      // 关闭前延迟（秒）
}

// VocabularyConfig 词库配置
type VocabularyConfig struct {
	SeedFile        string `yaml:"seed_file"`        // 词库种子文件路径
	DefaultLanguage string `yaml:"default_language"` // 默认语言代码
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 秒
}

// RoundTimeDuration 返回每回合答题时长
func (c *GameConfig) RoundTimeDuration() time.Duration {
	return time.Duration(c.RoundTime) * time.Second
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回关闭前延迟
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// CooldownDuration 返回聊天冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// Load 加载配置文件，缺失项使用默认值，环境变量优先级最高
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// applyDefaults 填充缺失的默认值
func (cfg *Config) applyDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = defaultMaxConnections
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}
	if cfg.Game.MaxPlayers == 0 {
		cfg.Game.MaxPlayers = defaultMaxPlayers
	}
	if cfg.Game.MinPlayers == 0 {
		cfg.Game.MinPlayers = defaultMinPlayers
	}
	if cfg.Game.RoundTime == 0 {
		cfg.Game.RoundTime = defaultRoundTime
	}
	if cfg.Game.MaxRounds == 0 {
		cfg.Game.MaxRounds = defaultMaxRounds
	}
	if cfg.Game.WordsPerTurn == 0 {
		cfg.Game.WordsPerTurn = defaultWordsPerTurn
	}
	if cfg.Game.BasePoints == 0 {
		cfg.Game.BasePoints = defaultBasePoints
	}
	if cfg.Game.RoomTimeout == 0 {
		cfg.Game.RoomTimeout = defaultRoomTimeout
	}
	if cfg.Game.ShutdownTimeout == 0 {
		cfg.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Game.ShutdownCheckInterval == 0 {
		cfg.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}
	if cfg.Game.RoomCleanupDelay == 0 {
		cfg.Game.RoomCleanupDelay = defaultRoomCleanupDelay
	}
	if cfg.Vocabulary.SeedFile == "" {
		cfg.Vocabulary.SeedFile = defaultSeedFile
	}
	if cfg.Vocabulary.DefaultLanguage == "" {
		cfg.Vocabulary.DefaultLanguage = defaultLanguage
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
	if cfg.Security.RateLimit.MaxPerSecond == 0 {
		cfg.Security.RateLimit.MaxPerSecond = 10
	}
	if cfg.Security.RateLimit.MaxPerMinute == 0 {
		cfg.Security.RateLimit.MaxPerMinute = 60
	}
	if cfg.Security.RateLimit.BanDuration == 0 {
		cfg.Security.RateLimit.BanDuration = 60
	}
	if cfg.Security.MessageLimit.MaxPerSecond == 0 {
		cfg.Security.MessageLimit.MaxPerSecond = 20
	}
	if cfg.Security.ChatLimit.MaxPerSecond == 0 {
		cfg.Security.ChatLimit.MaxPerSecond = 2
	}
	if cfg.Security.ChatLimit.MaxPerMinute == 0 {
		cfg.Security.ChatLimit.MaxPerMinute = 30
	}
	if cfg.Security.ChatLimit.Cooldown == 0 {
		cfg.Security.ChatLimit.Cooldown = 10
	}
}

// applyEnv 从环境变量覆盖配置（用于容器部署）
func (cfg *Config) applyEnv() {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GAME_ROUND_TIME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.RoundTime = n
		}
	}
	if v := os.Getenv("GAME_MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.MaxRounds = n
		}
	}
	if v := os.Getenv("VOCAB_SEED_FILE"); v != "" {
		cfg.Vocabulary.SeedFile = v
	}
	if v := os.Getenv("SECURITY_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.Security.AllowedOrigins = origins
	}
}

package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // 校验 university.timezone 不依赖宿主机时区库

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Session    SessionConfig    `mapstructure:"session"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Biometric  BiometricConfig  `mapstructure:"biometric"`
	University UniversityConfig `mapstructure:"university"`
	Feature    FeatureConfig    `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	BaseURL     string        `mapstructure:"base_url"`
	BodyLimit   int64         `mapstructure:"body_limit"`   // JSON 接口请求体上限
	UploadLimit int64         `mapstructure:"upload_limit"` // ICS 课表导入请求体上限
	CORS        CORSConfig    `mapstructure:"cors"`
	RateLimit   int           `mapstructure:"rate_limit"`         // 登录/注册每 IP 窗口内最大请求数
	CheckInRate int           `mapstructure:"checkin_rate_limit"` // 每名学生窗口内签到/指纹验证次数
	RateWindow  time.Duration `mapstructure:"rate_window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// Configured 数据库凭据是否齐全；不齐全时服务以引导模式启动
func (c *DatabaseConfig) Configured() bool {
	return c.Host != "" && c.Name != "" && c.User != ""
}

// RedisConfig Redis 配置（Token 黑名单、限流、统计缓存）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // 为空时输出到 stderr
}

// CacheConfig 统计缓存配置
type CacheConfig struct {
	Backend      string        `mapstructure:"backend"` // memory | redis
	Prefix       string        `mapstructure:"prefix"`
	StatsTTL     time.Duration `mapstructure:"stats_ttl"`
	PollInterval time.Duration `mapstructure:"poll_interval"` // 0 表示不轮询
	StaleOnError bool          `mapstructure:"stale_on_error"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // 共享加载的上限，0 表示不限
}

// SessionConfig 签到会话配置
type SessionConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // 过期会话后台关闭间隔，0 表示只在访问时关闭
}

// StatsConfig 仪表盘统计配置
type StatsConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

// BiometricConfig 模拟指纹验证配置
type BiometricConfig struct {
	AcquireDelay time.Duration     `mapstructure:"acquire_delay"`
	MatchDelay   time.Duration     `mapstructure:"match_delay"`
	ResetAfter   time.Duration     `mapstructure:"reset_after"`
	Seed         int64             `mapstructure:"seed"` // 0 表示按时间取种
	ScoreMin     float64           `mapstructure:"score_min"`
	ScoreMax     float64           `mapstructure:"score_max"`
	Probability  ProbabilityConfig `mapstructure:"probability"`
}

// ProbabilityConfig 四项检查各自的通过概率
type ProbabilityConfig struct {
	PatternMatch float64 `mapstructure:"pattern_match"`
	Liveness     float64 `mapstructure:"liveness"`
	Temperature  float64 `mapstructure:"temperature"`
	Identity     float64 `mapstructure:"identity"`
}

// UniversityConfig 学校相关规则
type UniversityConfig struct {
	EmailDomain string `mapstructure:"email_domain"`
	Timezone    string `mapstructure:"timezone"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	DemoSeed    bool `mapstructure:"demo_seed"`
	PublicStats bool `mapstructure:"public_stats"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.upload_limit", 6<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.checkin_rate_limit", 10)
	v.SetDefault("server.rate_window", "1m")

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "attendance")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Riyadh")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "1h")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.prefix", "attendance:cache:")
	v.SetDefault("cache.stats_ttl", "30s")
	v.SetDefault("cache.poll_interval", "0s")
	v.SetDefault("cache.stale_on_error", true)
	v.SetDefault("cache.fetch_timeout", "10s")

	v.SetDefault("session.sweep_interval", "1m")

	v.SetDefault("stats.recent_limit", 10)

	v.SetDefault("biometric.acquire_delay", "1500ms")
	v.SetDefault("biometric.match_delay", "1000ms")
	v.SetDefault("biometric.reset_after", "3s")
	v.SetDefault("biometric.seed", 0)
	v.SetDefault("biometric.score_min", 85)
	v.SetDefault("biometric.score_max", 99)
	v.SetDefault("biometric.probability.pattern_match", 0.95)
	v.SetDefault("biometric.probability.liveness", 0.98)
	v.SetDefault("biometric.probability.temperature", 0.99)
	v.SetDefault("biometric.probability.identity", 0.97)

	v.SetDefault("university.email_domain", "kku.edu.sa")
	v.SetDefault("university.timezone", "Asia/Riyadh")

	v.SetDefault("feature.demo_seed", false)
	v.SetDefault("feature.public_stats", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ATTEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
// 数据库凭据缺失不在此报错，由 main 切换到引导模式
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("配置校验失败: cache.backend 只能是 memory 或 redis")
	}
	if c.Biometric.ScoreMin > c.Biometric.ScoreMax {
		return fmt.Errorf("配置校验失败: biometric.score_min 不能大于 score_max")
	}
	for name, p := range map[string]float64{
		"pattern_match": c.Biometric.Probability.PatternMatch,
		"liveness":      c.Biometric.Probability.Liveness,
		"temperature":   c.Biometric.Probability.Temperature,
		"identity":      c.Biometric.Probability.Identity,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("配置校验失败: biometric.probability.%s 必须在 0-1 之间", name)
		}
	}
	if _, err := time.LoadLocation(c.University.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: university.timezone 无效: %w", err)
	}
	return nil
}

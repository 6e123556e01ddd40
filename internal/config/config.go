package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Bulk     BulkConfig     `mapstructure:"bulk"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

// VisionConfig holds the LLM API settings. The vision model handles
// recognition and claim analysis; the eval model handles text-only
// feedback evaluation.
type VisionConfig struct {
	Model     string        `mapstructure:"model"`
	EvalModel string        `mapstructure:"eval_model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type RedditConfig struct {
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	UserAgent         string        `mapstructure:"user_agent"`
	Subreddits        []string      `mapstructure:"subreddits"`
	PerSubredditLimit int           `mapstructure:"per_subreddit_limit"`
	FetchDelay        time.Duration `mapstructure:"fetch_delay"`
	QuickFillCap      int           `mapstructure:"quick_fill_cap"`
	ManualCap         int           `mapstructure:"manual_cap"`
}

// BulkConfig bounds concurrent fan-out for admin batch operations.
type BulkConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "./data/memebuster.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("vision.model", "grok-2-vision-latest")
	v.SetDefault("vision.eval_model", "grok-2-latest")
	v.SetDefault("vision.base_url", "https://api.x.ai/v1")
	v.SetDefault("vision.timeout", 60*time.Second)
	v.SetDefault("reddit.user_agent", "web:memebuster:v1.0.0 (by /u/memebusters)")
	v.SetDefault("reddit.subreddits", []string{
		"PoliticalMemes",
		"PoliticalHumor",
		"TheRightCantMeme",
		"TheLeftCantMeme",
		"AdviceAnimals",
		"memes",
		"dankleft",
	})
	v.SetDefault("reddit.per_subreddit_limit", 15)
	v.SetDefault("reddit.fetch_delay", time.Second)
	v.SetDefault("reddit.quick_fill_cap", 99)
	v.SetDefault("reddit.manual_cap", 200)
	v.SetDefault("bulk.concurrency", 5)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucket", "memes")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("vision.api_key", "XAI_API_KEY", "GROK_API_KEY")
	v.BindEnv("vision.base_url", "XAI_BASE_URL")
	v.BindEnv("vision.model", "VISION_MODEL")
	v.BindEnv("reddit.client_id", "REDDIT_CLIENT_ID")
	v.BindEnv("reddit.client_secret", "REDDIT_CLIENT_SECRET")
	v.BindEnv("reddit.user_agent", "REDDIT_USER_AGENT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("admin.token", "ADMIN_TOKEN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

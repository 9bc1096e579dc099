package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultHttpAddr    = ":8080"
	DefaultCacheMaxAge = 5 * time.Second
	DefaultAwsRegion   = "eu-central-1"
	DefaultAmqpQueue   = "participation-scored"
)

// Notification sources for "participation scored" events.
const (
	NotifyNone = "none"
	NotifySqs  = "sqs"
	NotifyAmqp = "amqp"
)

type Config struct {
	AwsRegion string   `toml:"aws_region"`
	Http      Http     `toml:"http"`
	Log       Log      `toml:"log"`
	Scores    Scores   `toml:"scores"`
	Notify    Notify   `toml:"notify"`
	Postgres  Postgres `toml:"postgres"`
}

type Http struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// HS256 key for service tokens; invalidation is refused while empty
	JwtKey string `toml:"jwt_key"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Scores struct {
	// how long a computed contest snapshot is served before recomputation
	CacheMaxAge Duration `toml:"cache_max_age"`
}

type Notify struct {
	Source      string `toml:"source"`
	SqsQueueUrl string `toml:"sqs_queue_url"`
	AmqpUrl     string `toml:"amqp_url"`
	AmqpQueue   string `toml:"amqp_queue"`
}

type Postgres struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	PasswordSecret string `toml:"password_secret"`
	DB             string `toml:"db"`
	SSLMode        string `toml:"sslmode"`
}

// Duration decodes TOML strings such as "5s" or "2m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Config {
	return Config{
		AwsRegion: DefaultAwsRegion,
		Http: Http{
			Addr:           DefaultHttpAddr,
			AllowedOrigins: []string{"http://localhost:8080"},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Scores: Scores{
			CacheMaxAge: Duration{DefaultCacheMaxAge},
		},
		Notify: Notify{
			Source:    NotifyNone,
			AmqpQueue: DefaultAmqpQueue,
		},
		Postgres: Postgres{
			Host:    "localhost",
			Port:    5432,
			User:    "cmsuser",
			DB:      "cmsdb",
			SSLMode: "disable",
		},
	}
}

// Load reads .env (if present), then the TOML file at path (if non-empty), then
// applies environment variable overrides.
func Load(path string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Scores.CacheMaxAge.Duration <= 0 {
		return fmt.Errorf("scores.cache_max_age must be positive, got %s", c.Scores.CacheMaxAge)
	}
	switch c.Notify.Source {
	case NotifyNone:
	case NotifySqs:
		if c.Notify.SqsQueueUrl == "" {
			return errors.New("notify.sqs_queue_url is required for the sqs source")
		}
	case NotifyAmqp:
		if c.Notify.AmqpUrl == "" {
			return errors.New("notify.amqp_url is required for the amqp source")
		}
		if c.Notify.AmqpQueue == "" {
			return errors.New("notify.amqp_queue is required for the amqp source")
		}
	default:
		return fmt.Errorf("unknown notify.source %q", c.Notify.Source)
	}
	return nil
}

func loadDotEnv() error {
	_, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env file: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

func applyEnv(c *Config) error {
	setStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setStr("AWS_REGION", &c.AwsRegion)
	setStr("HTTP_ADDR", &c.Http.Addr)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		c.Http.AllowedOrigins = strings.Split(v, ",")
	}
	setStr("JWT_KEY", &c.Http.JwtKey)
	setStr("LOG_LEVEL", &c.Log.Level)
	setStr("LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("SCORES_CACHE_MAX_AGE"); v != "" {
		if err := c.Scores.CacheMaxAge.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("failed to parse SCORES_CACHE_MAX_AGE: %w", err)
		}
	}

	setStr("NOTIFY_SOURCE", &c.Notify.Source)
	setStr("SCORED_SQS_QUEUE_URL", &c.Notify.SqsQueueUrl)
	setStr("SCORED_AMQP_URL", &c.Notify.AmqpUrl)
	setStr("SCORED_AMQP_QUEUE", &c.Notify.AmqpQueue)

	setStr("POSTGRES_HOST", &c.Postgres.Host)
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse POSTGRES_PORT: %w", err)
		}
		c.Postgres.Port = port
	}
	setStr("POSTGRES_USER", &c.Postgres.User)
	setStr("POSTGRES_PW", &c.Postgres.Password)
	setStr("POSTGRES_PASSWORD_SECRET_NAME", &c.Postgres.PasswordSecret)
	setStr("POSTGRES_DB", &c.Postgres.DB)
	setStr("POSTGRES_SSLMODE", &c.Postgres.SSLMode)
	return nil
}

// LogValue keeps the postgres password and the jwt key out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.Http.Addr),
		slog.Bool("jwt_key_set", c.Http.JwtKey != ""),
		slog.String("log_level", c.Log.Level),
		slog.Duration("cache_max_age", c.Scores.CacheMaxAge.Duration),
		slog.String("notify_source", c.Notify.Source),
		slog.String("pg_host", c.Postgres.Host),
		slog.String("pg_db", c.Postgres.DB),
	)
}

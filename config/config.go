package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Dosada05/hackathon-portal/models"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Rounds   RoundsConfig   `mapstructure:"rounds"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MigrateOnStart bool          `mapstructure:"migrate_on_start"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// StorageConfig выбирает бэкенд для файлов заявок: "r2" (Cloudflare R2 через S3 API) или "minio".
type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	AccountID       string `mapstructure:"account_id"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type RoundConfig struct {
	Deadline string `mapstructure:"deadline"`
}

// RoundsConfig holds absolute round deadlines (RFC3339). Empty means "no deadline".
type RoundsConfig struct {
	IST    RoundConfig `mapstructure:"ist"`
	Round1 RoundConfig `mapstructure:"round1"`
	Round2 RoundConfig `mapstructure:"round2"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load собирает конфигурацию: .env (если есть), config.yaml (если есть), затем переменные окружения.
// Ключи окружения получаются из имён секций: database.url -> DATABASE_URL.
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("storage.driver", "r2")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("redis.db", 0)

	v.SetDefault("rabbitmq.exchange", "hackathon.events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// AutomaticEnv only covers keys viper already knows about, so keys without
// defaults are bound explicitly.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"jwt.secret",
		"storage.account_id", "storage.endpoint", "storage.access_key_id",
		"storage.secret_access_key", "storage.bucket", "storage.public_base_url",
		"redis.addr", "redis.password",
		"rabbitmq.url",
		"rounds.ist.deadline", "rounds.round1.deadline", "rounds.round2.deadline",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "r2", "minio":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q: expected r2 or minio", c.Storage.Driver)
	}
	if _, err := c.Rounds.Deadlines(); err != nil {
		return err
	}
	return nil
}

// Deadlines parses the configured round deadlines. Rounds without a value are omitted.
func (r RoundsConfig) Deadlines() (map[models.Round]time.Time, error) {
	out := make(map[models.Round]time.Time, len(models.Rounds))
	for round, raw := range map[models.Round]string{
		models.RoundIST: r.IST.Deadline,
		models.Round1:   r.Round1.Deadline,
		models.Round2:   r.Round2.Deadline,
	} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline for %s: %w", round, err)
		}
		out[round] = t
	}
	return out, nil
}

package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/quidz-backend/internal/data/db"
	"github.com/yungbote/quidz-backend/internal/observability"
	"github.com/yungbote/quidz-backend/internal/pkg/envutil"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/openai"
	"github.com/yungbote/quidz-backend/internal/realtime/bus"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Postgres db.PostgresConfig
	Redis    bus.RedisConfig

	ObjectStorageMode      string
	StorageEmulatorHost    string
	StoragePublicBaseURL   string
	GoogleCredentials      string
	AvatarBucketName       string
	AvatarCDNDomain        string
	FilesBucketName        string
	FilesCDNDomain         string
	AvatarColorsPath       string
	OpenAI                 openai.Config
	AssistantPrompt        string
	AssistantHistory       int
	LearnedBadgeMilestones []int

	CORSOrigins []string
	Otel        observability.OtelConfig
}

// fileConfig is the optional YAML overlay. It holds only non-secret settings;
// any matching environment variable wins.
type fileConfig struct {
	CORSOrigins       []string `yaml:"cors_origins"`
	LearnedMilestones []int    `yaml:"learned_milestones"`
	AvatarColorsPath  string   `yaml:"avatar_colors_path"`
	Assistant         struct {
		Prompt  string `yaml:"prompt"`
		History int    `yaml:"history"`
		Model   string `yaml:"model"`
	} `yaml:"assistant"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if strings.TrimSpace(path) == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	fc, err := loadFileConfig(os.Getenv("QUIDZ_CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),

		Postgres: db.PostgresConfig{
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "quidz"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Seconds("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			Channel:  envutil.String("REDIS_CHANNEL", "quidz:sse"),
		},

		ObjectStorageMode:    envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", ""),
		StoragePublicBaseURL: envutil.String("STORAGE_PUBLIC_BASE_URL", ""),
		GoogleCredentials:    envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""),
		AvatarBucketName:     envutil.String("AVATAR_GCS_BUCKET_NAME", ""),
		AvatarCDNDomain:      envutil.String("AVATAR_CDN_DOMAIN", ""),
		FilesBucketName:      envutil.String("FILES_GCS_BUCKET_NAME", ""),
		FilesCDNDomain:       envutil.String("FILES_CDN_DOMAIN", ""),
		AvatarColorsPath:     envutil.String("AVATAR_COLORS_PATH", fc.AvatarColorsPath),

		OpenAI: openai.Config{
			APIKey:     envutil.String("OPENAI_API_KEY", ""),
			BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
			Model:      envutil.String("OPENAI_MODEL", fc.Assistant.Model),
			Timeout:    envutil.Seconds("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 2),
		},
		AssistantPrompt:        envutil.String("ASSISTANT_PROMPT", fc.Assistant.Prompt),
		AssistantHistory:       envutil.Int("ASSISTANT_HISTORY", fc.Assistant.History),
		LearnedBadgeMilestones: fc.LearnedMilestones,

		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", fc.CORSOrigins),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", ""),
			Environment: envutil.String("DEPLOYMENT_ENV", ""),
			Version:     envutil.String("SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
	}

	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return Config{}, fmt.Errorf("token TTLs must be positive")
	}
	return cfg, nil
}

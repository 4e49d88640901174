package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Media    MediaConfig
	Uploads  UploadsConfig
	Feed     FeedConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig carries the two independent token secrets. Leaking the access
// secret must not compromise refresh tokens, and vice versa.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// MediaConfig selects where image bytes live. The API itself never serves
// image content, it only stores keys and hands out URLs.
type MediaConfig struct {
	Driver    string // "s3" or "local"
	Bucket    string
	Region    string
	Endpoint  string // non-empty for minio-compatible local endpoints
	AccessKey string
	SecretKey string
	PathStyle bool
	LocalDir  string
	BaseURL   string
}

// UploadsConfig restricts accepted image uploads.
type UploadsConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// FeedConfig tunes photo feed caching.
type FeedConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
		RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		AccessExpiry:  parseDuration(v.GetString("JWT_ACCESS_EXPIRATION"), 15*time.Minute),
		RefreshExpiry: parseDuration(v.GetString("JWT_REFRESH_EXPIRATION"), 7*24*time.Hour),
		Issuer:        v.GetString("JWT_ISSUER"),
	}

	cfg.Media = MediaConfig{
		Driver:    v.GetString("MEDIA_DRIVER"),
		Bucket:    v.GetString("MEDIA_S3_BUCKET"),
		Region:    v.GetString("MEDIA_S3_REGION"),
		Endpoint:  v.GetString("MEDIA_S3_ENDPOINT"),
		AccessKey: v.GetString("MEDIA_S3_ACCESS_KEY"),
		SecretKey: v.GetString("MEDIA_S3_SECRET_KEY"),
		PathStyle: v.GetBool("MEDIA_S3_PATH_STYLE"),
		LocalDir:  v.GetString("MEDIA_LOCAL_DIR"),
		BaseURL:   v.GetString("MEDIA_BASE_URL"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	cfg.Feed = FeedConfig{
		CacheEnabled: v.GetBool("FEED_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("FEED_CACHE_TTL"), 2*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "photostream")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_SECRET", "dev_access_secret")
	v.SetDefault("JWT_REFRESH_SECRET", "dev_refresh_secret")
	v.SetDefault("JWT_ACCESS_EXPIRATION", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "photostream-api")

	v.SetDefault("MEDIA_DRIVER", "local")
	v.SetDefault("MEDIA_S3_BUCKET", "photostream-media")
	v.SetDefault("MEDIA_S3_REGION", "us-east-1")
	v.SetDefault("MEDIA_S3_ENDPOINT", "")
	v.SetDefault("MEDIA_S3_PATH_STYLE", false)
	v.SetDefault("MEDIA_LOCAL_DIR", "./media")
	v.SetDefault("MEDIA_BASE_URL", "http://localhost:8080/media")

	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif")

	v.SetDefault("FEED_CACHE_ENABLED", false)
	v.SetDefault("FEED_CACHE_TTL", "2m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

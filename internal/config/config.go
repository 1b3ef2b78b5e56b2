package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Media providers accepted in MEDIA_PROVIDER.
const (
	MediaProviderS3         = "s3"
	MediaProviderCloudinary = "cloudinary"
)

var (
	ErrMissingDatabaseConfig = errors.New("missing database configuration")
	ErrMissingTokenSecrets   = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	ErrSameTokenSecrets      = errors.New("access and refresh token secrets must differ")
	ErrUnknownMediaProvider  = errors.New("unknown media provider")
	ErrMissingMediaConfig    = errors.New("missing media provider configuration")
	ErrInvalidSameSite       = errors.New("COOKIE_SAME_SITE must be one of lax, strict, none")
)

type Config struct {
	DBHost       string `env:"DB_HOST"`
	DBPort       string `env:"DB_PORT"`
	DBUser       string `env:"DB_USER"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME"`
	DBSSLMode    string `env:"DB_SSL_MODE"`
	DBAutoSchema bool   `env:"DB_AUTO_SCHEMA"`

	ServerPort      string        `env:"SERVER_PORT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	CORSOrigin      string        `env:"CORS_ORIGIN"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY"`
	TokenIssuer        string        `env:"TOKEN_ISSUER"`
	BcryptCost         int           `env:"BCRYPT_COST"`

	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`

	UploadDir     string `env:"UPLOAD_DIR"`
	MediaProvider string `env:"MEDIA_PROVIDER"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicURL       string `env:"R2_PUBLIC_URL"`

	CloudinaryCloudName string        `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string        `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string        `env:"CLOUDINARY_API_SECRET"`
	CloudinaryBaseURL   string        `env:"CLOUDINARY_BASE_URL"`
	UploadTimeout       time.Duration `env:"UPLOAD_TIMEOUT"`

	RedisURL        string        `env:"REDIS_URL"`
	ChannelCacheTTL time.Duration `env:"CHANNEL_CACHE_TTL"`

	LogRole string `env:"LOG_ROLE"`

	// EnvFileLoaded reports whether a .env file was found. Not read from the environment.
	EnvFileLoaded bool
}

// Defaults returns the values used for every setting left unset in the
// environment.
func Defaults() Config {
	return Config{
		DBPort:             "5432",
		DBSSLMode:          "require",
		ServerPort:         "8080",
		ShutdownTimeout:    10 * time.Second,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 10 * 24 * time.Hour,
		TokenIssuer:        "videotube",
		BcryptCost:         10,
		CookieSameSite:     "lax",
		UploadDir:          os.TempDir(),
		MediaProvider:      MediaProviderS3,
		CloudinaryBaseURL:  "https://api.cloudinary.com/v1_1",
		UploadTimeout:      30 * time.Second,
		ChannelCacheTTL:    time.Minute,
		LogRole:            "server",
	}
}

func LoadConfig() (*Config, error) {
	envFileLoaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		envFileLoaded = false
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	defaults := Defaults()
	if err := mergo.Merge(cfg, defaults); err != nil {
		return nil, fmt.Errorf("error merging default configs: %w", err)
	}

	cfg.EnvFileLoaded = envFileLoaded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return ErrMissingDatabaseConfig
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return ErrMissingTokenSecrets
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return ErrSameTokenSecrets
	}
	if _, err := c.SameSite(); err != nil {
		return err
	}

	switch c.MediaProvider {
	case MediaProviderS3:
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" || c.R2PublicURL == "" {
			return fmt.Errorf("%w: %s", ErrMissingMediaConfig, c.MediaProvider)
		}
	case MediaProviderCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("%w: %s", ErrMissingMediaConfig, c.MediaProvider)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMediaProvider, c.MediaProvider)
	}

	return nil
}

// SameSite converts CookieSameSite to its net/http value.
func (c *Config) SameSite() (http.SameSite, error) {
	switch c.CookieSameSite {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidSameSite
	}
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string // postgres://... or sqlite://path

	JWTSecret      string
	SessionTTL     time.Duration
	CookieName     string
	CookieSecure   bool
	BcryptCost     int
	RequestTimeout time.Duration
	CORSOrigins    []string

	UploadDir string // used when no S3 bucket is configured
	S3        S3Config

	RabbitMQURL    string
	EventsExchange string
}

type S3Config struct {
	Endpoint  string // e.g. https://<account>.r2.cloudflarestorage.com
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

func (c *Config) Production() bool { return c.Env == "production" }

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getenv("APP_ENV", "development"),
		HTTPPort:    getenv("HTTP_PORT", ":8000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CookieName:  getenv("COOKIE_NAME", "token"),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getenv("S3_REGION", "auto"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: getenv("EVENTS_EXCHANGE", "job_portal_events"),
	}
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", cfg.Production()); err != nil {
		return nil, err
	}
	for _, o := range strings.Split(getenv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.S3.Bucket != "" && (c.S3.AccessKey == "" || c.S3.SecretKey == "") {
		return errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set when S3_BUCKET is")
	}
	return nil
}

// Summary is safe to log: credentials are masked.
func (c *Config) Summary() map[string]any {
	return map[string]any{
		"env":          c.Env,
		"http_port":    c.HTTPPort,
		"database_url": mask(c.DatabaseURL),
		"jwt_secret":   mask(c.JWTSecret),
		"session_ttl":  c.SessionTTL.String(),
		"cookie":       c.CookieName,
		"secure":       c.CookieSecure,
		"s3_bucket":    c.S3.Bucket,
		"upload_dir":   c.UploadDir,
		"rabbitmq_url": mask(c.RabbitMQURL),
		"cors_origins": c.CORSOrigins,
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

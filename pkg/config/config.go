package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	Env string

	ServerPort int

	DatabaseURL string
	DBDriver    string

	SessionSecret []byte
	SessionTTL    time.Duration

	LogLevel string

	CORSOrigins      []string
	CORSOriginSuffix string

	TrustedProxies []string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	UploadBucketURL    string
	UploadPublicPrefix string
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	env := EnvDefault("APP_ENV", EnvDefault("NODE_ENV", "development"))

	return Config{
		Env: env,

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    EnvDefault("DB_DRIVER", "pgx"),

		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionTTL:    EnvDurationDefault("SESSION_TTL", 7*24*time.Hour),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		CORSOrigins:      CSV(EnvDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		CORSOriginSuffix: EnvDefault("CORS_ORIGIN_SUFFIX", ".vercel.app"),

		TrustedProxies: CSV(os.Getenv("TRUSTED_PROXIES")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		UploadBucketURL:    EnvDefault("UPLOAD_BUCKET_URL", "file:///./uploads"),
		UploadPublicPrefix: EnvDefault("UPLOAD_PUBLIC_PREFIX", "/uploads"),
	}
}

// Validate fails on missing secrets. Outside production an empty session
// secret is replaced with a fixed development key.
func (c *Config) Validate() error {
	if err := RequireNonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if len(c.SessionSecret) == 0 {
		if c.IsProduction() {
			return RequireNonEmptyBytes(c.SessionSecret, "SESSION_SECRET")
		}
		c.SessionSecret = []byte(devSessionSecret)
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

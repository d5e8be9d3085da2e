package config

import (
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
	// EventsChannel carries entry change notifications between instances.
	EventsChannel string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type ExportConfig struct {
	// Storage is "local" or "s3".
	Storage           string
	Dir               string
	FilesPublicPrefix string
	ExternalURL       string
	MaxAge            time.Duration
	CleanupSchedule   string
}

type AppConfig struct {
	Port string
	// StoreDriver is "postgres" or "firestore".
	StoreDriver string
	// AuthMode is "firebase" or "jwt".
	AuthMode string
	Location *time.Location

	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Firebase FirebaseConfig
	JWT      JWTConfig
	Log      LogConfig
	Export   ExportConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration value %q: %v", s, err)
	}
	return d
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid time zone %q: %v", name, err)
	}
	return loc
}

func Load() AppConfig {
	return AppConfig{
		Port:        getenv("APP_PORT", "8010"),
		StoreDriver: getenv("STORE_DRIVER", "postgres"),
		AuthMode:    getenv("AUTH_MODE", "firebase"),
		Location:    mustLocation(getenv("APP_TIMEZONE", "Asia/Kolkata")),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "postgres"),
			Password: getenv("PG_PASSWORD", "postgres"),
			DBName:   getenv("PG_DB", "healthops"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:          getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      getenv("REDIS_PASSWORD", ""),
			DB:            mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:    mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout:   mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:       mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:        getenv("REDIS_PREFIX", "healthops_"),
			EventsChannel: getenv("REDIS_EVENTS_CHANNEL", "entry_events"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "exports"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getenv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET", ""),
			Issuer: getenv("JWT_ISSUER", "healthops-dashboard"),
			TTL:    mustDuration(getenv("JWT_TTL", "12h")),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
			Output: getenv("LOG_OUTPUT", "stdout"),
		},
		Export: ExportConfig{
			Storage:           getenv("EXPORT_STORAGE", "local"),
			Dir:               getenv("EXPORT_DIR", "./exports"),
			FilesPublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
			ExternalURL:       getenv("EXTERNAL_URL", ""),
			MaxAge:            mustDuration(getenv("EXPORT_MAX_AGE", "30m")),
			CleanupSchedule:   getenv("EXPORT_CLEANUP_SCHEDULE", "0 */5 * * * *"),
		},
	}
}

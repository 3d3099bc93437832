package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig
	Cleaner CleanerConfig
	GCS     GCSConfig
	S3      S3Config
}

type LogConfig struct {
	Level string
}

type CleanerConfig struct {
	Concurrency int   // max in-flight delete requests across all pages
	PageWorkers int   // max pages being filtered/deleted at once
	PageSize    int64 // maxResults hint for each listing call
}

type GCSConfig struct {
	CredentialsFile string
	CredentialsJSON string
	Endpoint        string
	Anonymous       bool
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

const (
	DefaultConcurrency = 64
	DefaultPageWorkers = 4
	DefaultPageSize    = 1000
)

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = load(viper.GetViper())
	})

	return instance
}

func load(v *viper.Viper) *Config {
	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLEANER_CONCURRENCY", DefaultConcurrency)
	v.SetDefault("CLEANER_PAGE_WORKERS", DefaultPageWorkers)
	v.SetDefault("CLEANER_PAGE_SIZE", DefaultPageSize)
	v.SetDefault("GCS_CREDENTIALS_FILE", "")
	v.SetDefault("GCS_CREDENTIALS_JSON", "")
	v.SetDefault("GCS_ENDPOINT", "")
	v.SetDefault("GCS_ANONYMOUS", false)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Cleaner: CleanerConfig{
			Concurrency: positiveOr(v.GetInt("CLEANER_CONCURRENCY"), DefaultConcurrency),
			PageWorkers: positiveOr(v.GetInt("CLEANER_PAGE_WORKERS"), DefaultPageWorkers),
			PageSize:    int64(positiveOr(v.GetInt("CLEANER_PAGE_SIZE"), DefaultPageSize)),
		},
		GCS: GCSConfig{
			CredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
			CredentialsJSON: v.GetString("GCS_CREDENTIALS_JSON"),
			Endpoint:        v.GetString("GCS_ENDPOINT"),
			Anonymous:       v.GetBool("GCS_ANONYMOUS"),
		},
		S3: S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
	}
}

func positiveOr(n, fallback int) int {
	if n < 1 {
		return fallback
	}
	return n
}

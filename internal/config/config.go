package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers. The API and the CLI both fall back to DefaultDatabaseDriver.
const (
	DriverPostgres        = "postgres"
	DriverSQLite          = "sqlite"
	DefaultDatabaseDriver = DriverPostgres
)

// File store drivers.
const (
	FileStoreCloudinary = "cloudinary"
	FileStoreDir        = "dir"
)

// Config holds runtime configuration values for the API service and the CLI.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	CORSOrigins string
	LogLevel    string
	DBDriver    string
	DatabaseURL string
	RedisURL    string

	MetadataCacheTTL time.Duration

	FileStoreDriver     string
	FileStoreDir        string
	FileStoreTimeout    time.Duration
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	SemesterConcurrency int
	ResultRateLimit     int
	RequestTimeout      time.Duration

	NATSURL            string
	NATSContactSubject string

	SeedToken string
}

// DatabaseConfig is the subset of configuration needed by offline tooling.
type DatabaseConfig struct {
	Driver   string
	URL      string
	RedisURL string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	v := newViper()

	v.SetDefault("app.name", "Resultboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("metadata.cache_ttl", "10m")
	v.SetDefault("filestore.driver", FileStoreCloudinary)
	v.SetDefault("filestore.timeout", "20s")
	v.SetDefault("cloudinary.folder", "results")
	v.SetDefault("results.semester_concurrency", 4)
	v.SetDefault("results.rate_limit", 30)
	v.SetDefault("request.timeout", "30s")
	v.SetDefault("nats.contact_subject", "resultboard.contact")

	cacheTTL, err := parseDuration(v, "metadata.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	fileTimeout, err := parseDuration(v, "filestore.timeout")
	if err != nil {
		return Config{}, err
	}
	requestTimeout, err := parseDuration(v, "request.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		CORSOrigins:         v.GetString("cors.allow_origins"),
		LogLevel:            strings.ToLower(v.GetString("log.level")),
		DBDriver:            strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		MetadataCacheTTL:    cacheTTL,
		FileStoreDriver:     strings.ToLower(v.GetString("filestore.driver")),
		FileStoreDir:        v.GetString("filestore.dir"),
		FileStoreTimeout:    fileTimeout,
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		SemesterConcurrency: v.GetInt("results.semester_concurrency"),
		ResultRateLimit:     v.GetInt("results.rate_limit"),
		RequestTimeout:      requestTimeout,
		NATSURL:             v.GetString("nats.url"),
		NATSContactSubject:  v.GetString("nats.contact_subject"),
		SeedToken:           v.GetString("seed.token"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database and cache settings. The CLI uses it so
// that file store credentials are not required for offline commands. The url
// is not checked here since the CLI may take it from a flag.
func LoadDatabase() (DatabaseConfig, error) {
	v := newViper()
	cfg := DatabaseConfig{
		Driver:   strings.ToLower(v.GetString("database.driver")),
		URL:      v.GetString("database.url"),
		RedisURL: v.GetString("redis.url"),
	}
	if err := validateDriver(cfg.Driver); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESULTBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	return v
}

func validateDatabase(driver, url string) error {
	if url == "" {
		return fmt.Errorf("database url must be provided")
	}
	return validateDriver(driver)
}

func validateDriver(driver string) error {
	switch driver {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (c *Config) validate() error {
	if err := validateDatabase(c.DBDriver, c.DatabaseURL); err != nil {
		return err
	}

	switch c.FileStoreDriver {
	case FileStoreCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials must be provided for the cloudinary file store")
		}
	case FileStoreDir:
		if c.FileStoreDir == "" {
			return fmt.Errorf("filestore dir must be provided for the dir file store")
		}
	default:
		return fmt.Errorf("unsupported file store driver %q", c.FileStoreDriver)
	}

	if c.SemesterConcurrency <= 0 {
		c.SemesterConcurrency = 4
	}
	if c.ResultRateLimit <= 0 {
		c.ResultRateLimit = 30
	}

	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabaseConfig  `mapstructure:"database"`
	Log      LogConfig       `mapstructure:"log"`
	Site     SiteConfig      `mapstructure:"site"`
	Provider ProviderConfig  `mapstructure:"provider"`
	Jobs     JobsConfig      `mapstructure:"jobs"`
	Import   ImportConfig    `mapstructure:"import"`
	Artifact ArtifactConfig  `mapstructure:"artifact"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Schema   SchemaConfig    `mapstructure:"schema"`
	Locales  []LocaleMapping `mapstructure:"locales"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SiteConfig describes the storefront site the import jobs are scoped to.
type SiteConfig struct {
	ID          string `mapstructure:"id"`
	LibraryType string `mapstructure:"library_type"` // private or shared
	LibraryID   string `mapstructure:"library_id"`
}

// SharedLibrary reports whether content imports target a shared library.
func (s SiteConfig) SharedLibrary() bool {
	return strings.EqualFold(s.LibraryType, "shared")
}

// ProviderConfig holds the translation provider read API settings.
type ProviderConfig struct {
	Type         string            `mapstructure:"type"` // textmaster or staging
	BaseURL      string            `mapstructure:"base_url"`
	ProjectPath  string            `mapstructure:"project_path"`
	DocumentPath string            `mapstructure:"document_path"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Headers      map[string]string `mapstructure:"headers"`
	StagingRoot  string            `mapstructure:"staging_root"`
}

// JobsConfig holds the job execution endpoint settings.
type JobsConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Token      string        `mapstructure:"token"`
	ProductJob string        `mapstructure:"product_job"`
	CatalogJob string        `mapstructure:"catalog_job"`
	ContentJob string        `mapstructure:"content_job"`
}

// ImportConfig controls queue draining.
type ImportConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

// ArtifactConfig controls where serialized import documents are staged.
type ArtifactConfig struct {
	Backend   string `mapstructure:"backend"` // local or s3
	Root      string `mapstructure:"root"`
	Namespace string `mapstructure:"namespace"`
	Extension string `mapstructure:"extension"`
}

// StorageConfig holds S3-compatible object storage settings for the s3 artifact backend.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
}

// SchemaConfig points at an optional attribute schema override file.
type SchemaConfig struct {
	File string `mapstructure:"file"`
}

// LocaleMapping pairs a catalog locale with the provider language code.
type LocaleMapping struct {
	Catalog  string `mapstructure:"catalog"`
	Provider string `mapstructure:"provider"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for deployment-specific values
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("site.id", "SITE_ID")
	v.BindEnv("provider.base_url", "TM_API_URL")
	v.BindEnv("jobs.url", "OCAPI_JOBS_URL")
	v.BindEnv("jobs.token", "OCAPI_TOKEN")
	v.BindEnv("artifact.root", "IMPEX_ROOT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/tmimport.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("site.library_type", "private")
	v.SetDefault("provider.type", "textmaster")
	v.SetDefault("provider.base_url", "https://api.textmaster.com/v1")
	v.SetDefault("provider.project_path", "clients/projects")
	v.SetDefault("provider.document_path", "documents")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.staging_root", "./data/staging")
	v.SetDefault("jobs.timeout", 30*time.Second)
	v.SetDefault("jobs.product_job", "TextMaster-ProductImport-")
	v.SetDefault("jobs.catalog_job", "TextMaster-CatalogImport-")
	v.SetDefault("jobs.content_job", "TextMaster-ContentImport-")
	v.SetDefault("import.poll_interval", time.Minute)
	v.SetDefault("import.run_timeout", 5*time.Minute)
	v.SetDefault("artifact.backend", "local")
	v.SetDefault("artifact.root", "./data/impex")
	v.SetDefault("artifact.namespace", "textmaster")
	v.SetDefault("artifact.extension", "xml")
	v.SetDefault("storage.use_ssl", true)
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.ID) == "" {
		return fmt.Errorf("site.id is required")
	}
	switch c.Provider.Type {
	case "textmaster":
		if strings.TrimSpace(c.Provider.BaseURL) == "" {
			return fmt.Errorf("provider.base_url is required for the textmaster provider")
		}
	case "staging":
		if strings.TrimSpace(c.Provider.StagingRoot) == "" {
			return fmt.Errorf("provider.staging_root is required for the staging provider")
		}
	default:
		return fmt.Errorf("unknown provider.type %q", c.Provider.Type)
	}
	if strings.TrimSpace(c.Jobs.URL) == "" {
		return fmt.Errorf("jobs.url is required")
	}
	switch c.Artifact.Backend {
	case "local":
		if strings.TrimSpace(c.Artifact.Root) == "" {
			return fmt.Errorf("artifact.root is required for the local backend")
		}
	case "s3":
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown artifact.backend %q", c.Artifact.Backend)
	}
	if c.Site.SharedLibrary() && strings.TrimSpace(c.Site.LibraryID) == "" {
		return fmt.Errorf("site.library_id is required when site.library_type is shared")
	}
	return nil
}

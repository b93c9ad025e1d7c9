package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDatabasePath = "database.path"

	KeyStorageDir       = "storage.dir"
	KeyStorageBucket    = "storage.bucket"
	KeyStoragePublicURL = "storage.public_url"

	KeyImportConcurrency     = "import.concurrency"
	KeyImportInsertBatchSize = "import.insert_batch_size"
	KeyImportScanRows        = "import.scan_rows"
	KeyImportConvention      = "import.period_convention"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"

	KeyServerPort = "server.port"
)

const (
	DefaultDatabasePath  = "bakerypay.db"
	DefaultStorageDir    = "storage"
	DefaultBucket        = "payroll-files"
	DefaultServerPort    = 8080
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultConvention    = "semi-monthly"
	DefaultConcurrency   = 3
	DefaultInsertBatch   = 100
	DefaultScanRowsLimit = 50
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type StorageConfig struct {
	Dir       string `mapstructure:"dir" validate:"required"`
	Bucket    string `mapstructure:"bucket" validate:"required,excludesall=/\\"`
	PublicURL string `mapstructure:"public_url" validate:"required,url"`
}

type ImportConfig struct {
	Concurrency      int    `mapstructure:"concurrency" validate:"min=1,max=16"`
	InsertBatchSize  int    `mapstructure:"insert_batch_size" validate:"min=1,max=100"`
	ScanRows         int    `mapstructure:"scan_rows" validate:"min=1,max=500"`
	PeriodConvention string `mapstructure:"period_convention" validate:"oneof=semi-monthly monthly"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# bakerypay configuration
database:
  path: "bakerypay.db"

storage:
  dir: "storage"
  bucket: "payroll-files"
  # Base URL of stored workbooks. When unset it follows server.port:
  # http://localhost:<server.port>/files. Set it when files are served from another host.
  # public_url: "http://localhost:8080/files"

import:
  concurrency: 3
  insert_batch_size: 100
  scan_rows: 50
  # semi-monthly: periods ending after the 15th start on the 16th, others on the 1st.
  # monthly: every period starts on the 1st.
  period_convention: "semi-monthly"

log:
  level: "info"
  format: "text"

server:
  port: 8080
`
}

// DefaultPublicURL is the file base URL of the local server on port.
func DefaultPublicURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/files", port)
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if strings.TrimSpace(cfg.Storage.PublicURL) == "" {
		cfg.Storage.PublicURL = DefaultPublicURL(cfg.Server.Port)
	}
	cfg.Import.PeriodConvention = strings.ToLower(strings.TrimSpace(cfg.Import.PeriodConvention))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyStorageDir, DefaultStorageDir)
	v.SetDefault(KeyStorageBucket, DefaultBucket)
	// Empty keeps the key bound for env overrides; the URL is derived from the port on load.
	v.SetDefault(KeyStoragePublicURL, "")
	v.SetDefault(KeyImportConcurrency, DefaultConcurrency)
	v.SetDefault(KeyImportInsertBatchSize, DefaultInsertBatch)
	v.SetDefault(KeyImportScanRows, DefaultScanRowsLimit)
	v.SetDefault(KeyImportConvention, DefaultConvention)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyServerPort, DefaultServerPort)
}

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/database"
	shelfhttp "github.com/sagarc03/shelf/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for shelf.
type Config struct {
	Server  ServerConfig         `mapstructure:"server"`
	Upload  UploadConfig         `mapstructure:"upload"`
	Journal JournalConfig        `mapstructure:"journal"`
	CORS    shelfhttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig            `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Root                string        `mapstructure:"root" validate:"required"`
	IndexFiles          []string      `mapstructure:"index_files" validate:"dive,required,excludes=/"`
	PlainTextExtensions []string      `mapstructure:"plain_text_extensions" validate:"dive,required"`
	ReadHeaderTimeout   time.Duration `mapstructure:"read_header_timeout" validate:"min=0"`
	QR                  bool          `mapstructure:"qr"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// UploadConfig holds upload handling configuration.
type UploadConfig struct {
	FilenamePolicy string `mapstructure:"filename_policy" validate:"required,oneof=sanitize reject"`
	// MaxBytes limits the request body of an upload. 0 means no limit.
	MaxBytes int64 `mapstructure:"max_bytes" validate:"min=0"`
}

// JournalConfig holds upload journal configuration.
type JournalConfig struct {
	Type          string        `mapstructure:"type" validate:"required,oneof=none sqlite postgres"`
	DSN           string        `mapstructure:"dsn" validate:"required_unless=Type none"`
	Tables        shelf.Tables  `mapstructure:"tables"`
	RecordTimeout time.Duration `mapstructure:"record_timeout" validate:"min=0"`
}

// Enabled reports whether uploads are journaled.
func (j JournalConfig) Enabled() bool {
	return j.Type != "none"
}

// Database returns the connection settings for the journal backend.
func (j JournalConfig) Database() database.Config {
	return database.Config{
		Type:   j.Type,
		DSN:    j.DSN,
		Tables: j.Tables,
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// Service returns the shelf.Config for the configured server and upload
// settings.
func (c *Config) Service() shelf.Config {
	return shelf.Config{
		Root:                c.Server.Root,
		FilenamePolicy:      shelf.FilenamePolicy(c.Upload.FilenamePolicy),
		IndexFiles:          c.Server.IndexFiles,
		PlainTextExtensions: c.Server.PlainTextExtensions,
		MaxUploadBytes:      c.Upload.MaxBytes,
		RecordTimeout:       c.Journal.RecordTimeout,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":            "server.host",
	"port":            "server.port",
	"root":            "server.root",
	"qr":              "server.qr",
	"filename-policy": "upload.filename_policy",
	"max-upload":      "upload.max_bytes",
	"journal":         "journal.type",
	"journal-dsn":     "journal.dsn",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.root", ".")
	v.SetDefault("server.index_files", shelf.DefaultIndexFiles)
	v.SetDefault("server.plain_text_extensions", shelf.DefaultPlainTextExtensions)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.qr", false)

	v.SetDefault("upload.filename_policy", string(shelf.PolicySanitize))
	v.SetDefault("upload.max_bytes", 0) // 0 means no limit

	v.SetDefault("journal.type", "none")
	v.SetDefault("journal.dsn", "shelf.db")
	v.SetDefault("journal.tables.uploads", "shelf_uploads")
	v.SetDefault("journal.record_timeout", 5*time.Second)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Journal.Enabled() {
		if err := cfg.Journal.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	return &cfg, nil
}

package tracker

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names the environment variable holding the config file path
const ConfigEnvVar = "TRACKER_CONFIG"

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TRACKER_"

// Options holds the full service configuration. It implements Config.
type Options struct {
	Server   ServerOptions   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseOptions `yaml:"database" envPrefix:"DB_"`
	Auth     AuthOptions     `yaml:"auth" envPrefix:"AUTH_"`
	Log      LogOptions      `yaml:"log" envPrefix:"LOG_"`
}

// ServerOptions holds HTTP server settings
type ServerOptions struct {
	Address string `yaml:"address" env:"ADDRESS"` // default: ":8080"
	AppName string `yaml:"app_name" env:"APP_NAME"`
}

// DatabaseOptions holds storage settings
type DatabaseOptions struct {
	DSN          string        `yaml:"dsn" env:"DSN"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"` // default: 1
	LogQueries   bool          `yaml:"log_queries" env:"LOG_QUERIES"`
	PingTimeout  time.Duration `yaml:"ping_timeout" env:"PING_TIMEOUT"` // default: 5s
}

// GetDebug enables verbose query output on the migration client
func (o DatabaseOptions) GetDebug() bool {
	return o.LogQueries
}

func (o DatabaseOptions) GetDriver() string {
	return "sqlite"
}

func (o DatabaseOptions) GetServer() string {
	return o.DSN
}

func (o DatabaseOptions) GetDSN() string {
	return o.DSN
}

func (o DatabaseOptions) GetPingTimeout() time.Duration {
	return o.PingTimeout
}

func (o DatabaseOptions) GetOtelIdentifier() string {
	return "go-tracker"
}

// AuthOptions holds token and password settings
type AuthOptions struct {
	SigningKey      string   `yaml:"signing_key" env:"SIGNING_KEY"`
	TokenExpiration int      `yaml:"token_expiration" env:"TOKEN_EXPIRATION"` // hours, default: 24
	Issuer          string   `yaml:"issuer" env:"ISSUER"`
	Audience        []string `yaml:"audience" env:"AUDIENCE"`
	TokenLookup     string   `yaml:"token_lookup" env:"TOKEN_LOOKUP"`
	AuthScheme      string   `yaml:"auth_scheme" env:"AUTH_SCHEME"`
	PublicPaths     []string `yaml:"public_paths" env:"PUBLIC_PATHS"`
	BcryptCost      int      `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// LogOptions holds logger settings
type LogOptions struct {
	Level      string `yaml:"level" env:"LEVEL"`   // default: "info"
	Format     string `yaml:"format" env:"FORMAT"` // "text" or "json"
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// DefaultOptions returns the built in configuration
func DefaultOptions() *Options {
	return &Options{
		Server: ServerOptions{
			Address: ":8080",
			AppName: "go-tracker",
		},
		Database: DatabaseOptions{
			DSN:          "file:tracker.db?cache=shared",
			MaxOpenConns: 1,
			PingTimeout:  5 * time.Second,
		},
		Auth: AuthOptions{
			TokenExpiration: 24,
			Issuer:          "go-tracker",
			Audience:        []string{"go-tracker"},
			TokenLookup:     "header:Authorization",
			AuthScheme:      "Bearer",
			BcryptCost:      12,
		},
		Log: LogOptions{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// LoadConfig builds Options in layers: defaults, the YAML file at path (or
// TRACKER_CONFIG, or ./config.yaml when present), a local .env file, and
// TRACKER_ prefixed environment variables. The result is validated.
func LoadConfig(path string) (*Options, error) {
	opts := DefaultOptions()

	if file := discoverConfigFile(path); file != "" {
		if err := loadYAMLFile(file, opts); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load .env file")
	}

	if err := env.ParseWithOptions(opts, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse environment").
			WithTextCode("INVALID_CONFIG")
	}

	if verr := opts.Validate(); verr != nil {
		return nil, verr
	}

	return opts, nil
}

func discoverConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func loadYAMLFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to read config file %s", path))
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("failed to parse config file %s", path)).
			WithTextCode("INVALID_CONFIG")
	}

	return nil
}

// Validate will run validation rules
func (o *Options) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.Errors{
			"server": validation.ValidateStruct(&o.Server,
				validation.Field(&o.Server.Address, validation.Required),
			),
			"database": validation.ValidateStruct(&o.Database,
				validation.Field(&o.Database.DSN, validation.Required),
				validation.Field(&o.Database.MaxOpenConns, validation.Min(0)),
				validation.Field(&o.Database.PingTimeout, validation.Required, validation.Min(time.Second)),
			),
			"auth": validation.ValidateStruct(&o.Auth,
				validation.Field(&o.Auth.SigningKey, validation.Required, validation.Length(32, 0)),
				validation.Field(&o.Auth.TokenExpiration, validation.Required, validation.Min(1)),
				validation.Field(&o.Auth.Issuer, validation.Required),
				validation.Field(&o.Auth.TokenLookup, validation.Required, validation.By(validateTokenLookup)),
				validation.Field(&o.Auth.BcryptCost, validation.Min(4), validation.Max(31)),
			),
			"log": validation.ValidateStruct(&o.Log,
				validation.Field(&o.Log.Level, validation.In("debug", "info", "warn", "error")),
				validation.Field(&o.Log.Format, validation.In("text", "json")),
			),
		}.Filter()
	}, "Invalid configuration")
}

func validateTokenLookup(value any) error {
	s, _ := value.(string)
	for _, part := range strings.Split(s, ",") {
		source, name, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || strings.TrimSpace(name) == "" {
			return errors.New("must be a list of source:name pairs")
		}
		switch strings.TrimSpace(source) {
		case "header", "query", "param", "cookie":
		default:
			return fmt.Errorf("unsupported token source %q", source)
		}
	}
	return nil
}

func (o *Options) GetSigningKey() string {
	return o.Auth.SigningKey
}

func (o *Options) GetTokenExpiration() int {
	return o.Auth.TokenExpiration
}

func (o *Options) GetIssuer() string {
	return o.Auth.Issuer
}

func (o *Options) GetAudience() []string {
	return o.Auth.Audience
}

func (o *Options) GetTokenLookup() string {
	return o.Auth.TokenLookup
}

func (o *Options) GetAuthScheme() string {
	return o.Auth.AuthScheme
}

func (o *Options) GetPublicPaths() []string {
	return o.Auth.PublicPaths
}

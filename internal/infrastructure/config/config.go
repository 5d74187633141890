package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Service identifies which process is loading configuration
type Service string

const (
	ServiceBilling Service = "billing"
	ServiceSales   Service = "sales"
)

// Asset source kinds
const (
	AssetSourceFile = "file"
	AssetSourceS3   = "s3"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Billing   BillingConfig
	Gateway   GatewayConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// BillingConfig holds billing service settings
type BillingConfig struct {
	Seed  bool // Load the fixed demo invoices at startup
	Asset AssetConfig
}

// AssetConfig locates the invoice PDF asset
type AssetConfig struct {
	Source       string // file or s3
	Path         string // local file path, used when Source is file
	Bucket       string
	Key          string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// GatewayConfig holds the sales gateway's billing client settings
type GatewayConfig struct {
	BillingBaseURL string
	Timeout        time.Duration // 0 disables the client timeout
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
}

// Load loads configuration for the given service from .env, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INV_ prefix (e.g., INV_GATEWAY_BILLING_BASE_URL)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load(service Service) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("INV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("billing.seed", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Billing: BillingConfig{
			Seed: v.GetBool("billing.seed"),
			Asset: AssetConfig{
				Source:       v.GetString("billing.asset.source"),
				Path:         v.GetString("billing.asset.path"),
				Bucket:       v.GetString("billing.asset.bucket"),
				Key:          v.GetString("billing.asset.key"),
				Endpoint:     v.GetString("billing.asset.endpoint"),
				Region:       v.GetString("billing.asset.region"),
				AccessKey:    v.GetString("billing.asset.access_key"),
				SecretKey:    v.GetString("billing.asset.secret_key"),
				UseSSL:       v.GetBool("billing.asset.use_ssl"),
				UsePathStyle: v.GetBool("billing.asset.use_path_style"),
			},
		},
		Gateway: GatewayConfig{
			BillingBaseURL: v.GetString("gateway.billing_base_url"),
			Timeout:        v.GetDuration("gateway.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg, service)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config, service Service) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invoicing-" + string(service)
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "7072"
		if service == ServiceSales {
			cfg.App.Port = "7071"
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 32 << 20 // 32MB
	}
	// Empty origin list means no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Correlation-Id"}
	}
	if cfg.Billing.Asset.Source == "" {
		cfg.Billing.Asset.Source = AssetSourceFile
	}
	if cfg.Billing.Asset.Path == "" {
		cfg.Billing.Asset.Path = "Assets/InvoiceFile.pdf"
	}
	if cfg.Billing.Asset.Key == "" {
		cfg.Billing.Asset.Key = "InvoiceFile.pdf"
	}
	if cfg.Billing.Asset.Region == "" {
		cfg.Billing.Asset.Region = "us-east-1"
	}
	if cfg.Gateway.BillingBaseURL == "" {
		cfg.Gateway.BillingBaseURL = "http://localhost:7072"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Billing.Asset.Source {
	case AssetSourceFile:
	case AssetSourceS3:
		if c.Billing.Asset.Bucket == "" {
			return fmt.Errorf("billing.asset.bucket is required when billing.asset.source is s3")
		}
	default:
		return fmt.Errorf("billing.asset.source must be %q or %q, got %q",
			AssetSourceFile, AssetSourceS3, c.Billing.Asset.Source)
	}

	u, err := url.Parse(c.Gateway.BillingBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway.billing_base_url must be an absolute URL, got %q", c.Gateway.BillingBaseURL)
	}
	if c.Gateway.Timeout < 0 {
		return fmt.Errorf("gateway.timeout cannot be negative")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

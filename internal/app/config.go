package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (LUMIERE_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (LUMIERE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com)" flag:"image-base-url"`
	JWTSecret    string `usage:"HS256 secret for auth tokens (LUMIERE_JWT_SECRET)" flag:"jwt-secret"`
	Razorpay     RazorpayConfig
	Shipping     ShippingConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// RazorpayConfig holds payment gateway credentials. When either field is
// empty the gateway stays disabled and payment intents return 503.
type RazorpayConfig struct {
	KeyID     string `usage:"Razorpay key id" flag:"razorpay-key-id"`
	KeySecret string `usage:"Razorpay key secret" flag:"razorpay-key-secret"`
}

// ShippingConfig controls the flat-fee shipping policy. Values are decimal
// strings so money never passes through floats.
type ShippingConfig struct {
	FreeThreshold string `default:"150" usage:"Subtotal above which shipping is free" flag:"shipping-free-threshold"`
	FlatFee       string `default:"15" usage:"Flat shipping fee" flag:"shipping-flat-fee"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LUMIERE",
		Files:     []string{"config.yaml", "/etc/lumiere/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set LUMIERE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set LUMIERE_JWT_SECRET")
	}
	if _, _, err := cfg.Shipping.rule(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// rule parses the shipping config into decimals.
func (c ShippingConfig) rule() (freeThreshold, flatFee decimal.Decimal, err error) {
	freeThreshold, err = decimal.NewFromString(c.FreeThreshold)
	if err != nil {
		return freeThreshold, flatFee, errors.Wrap(err, "parse shipping free threshold")
	}
	flatFee, err = decimal.NewFromString(c.FlatFee)
	if err != nil {
		return freeThreshold, flatFee, errors.Wrap(err, "parse shipping flat fee")
	}
	return freeThreshold, flatFee, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's LUMIERE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.Razorpay.KeyID == "" {
		c.Razorpay.KeyID = os.Getenv("RAZORPAY_KEY_ID")
	}
	if c.Razorpay.KeySecret == "" {
		c.Razorpay.KeySecret = os.Getenv("RAZORPAY_KEY_SECRET")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

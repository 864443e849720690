package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Telegram TelegramConfig
	Loyverse LoyverseConfig
	Render   RenderConfig
	Style    StyleConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	// MaxWebhookBytes caps the inbound webhook body size
	MaxWebhookBytes int64
}

// TelegramConfig holds the messaging bot settings.
// BotToken and ChatID are required; the process refuses to start without them.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Timeout  time.Duration
}

// LoyverseConfig holds the commerce platform API settings.
// AccessToken is required; the process refuses to start without it.
type LoyverseConfig struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
}

// RenderConfig holds the HTML-to-image renderer settings
type RenderConfig struct {
	// Engine selects the renderer: "wkhtmltoimage" or "chromedp"
	Engine string
	// BinaryPath overrides the wkhtmltoimage binary location
	BinaryPath string
	// NoSandbox runs the chromedp engine without the Chrome sandbox
	// (required when the process runs as root in a container)
	NoSandbox bool
	// TempDir is the base directory for per-request render artifacts
	TempDir string
	// Timeout bounds one render so a slow event cannot hold a worker
	Timeout time.Duration
}

// StyleConfig holds the receipt card presentation settings
type StyleConfig struct {
	ShopName       string
	LogoURL        string
	FooterLines    []string
	CreditLine     string
	PaymentDisplay string // "itemized" or "single_row"
	SingleRowLabel string
	// ShowOrigin adds the employee and register rows to the card
	ShowOrigin bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with RELAY_ prefix (e.g., RELAY_TELEGRAM_BOT_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxWebhookBytes: v.GetInt64("http.max_webhook_bytes"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("telegram.bot_token"),
			ChatID:   v.GetString("telegram.chat_id"),
			BaseURL:  v.GetString("telegram.base_url"),
			Timeout:  v.GetDuration("telegram.timeout"),
		},
		Loyverse: LoyverseConfig{
			AccessToken: v.GetString("loyverse.access_token"),
			BaseURL:     v.GetString("loyverse.base_url"),
			Timeout:     v.GetDuration("loyverse.timeout"),
		},
		Render: RenderConfig{
			Engine:     v.GetString("render.engine"),
			BinaryPath: v.GetString("render.binary_path"),
			NoSandbox:  v.GetBool("render.no_sandbox"),
			TempDir:    v.GetString("render.temp_dir"),
			Timeout:    v.GetDuration("render.timeout"),
		},
		Style: StyleConfig{
			ShopName:       v.GetString("style.shop_name"),
			LogoURL:        v.GetString("style.logo_url"),
			FooterLines:    v.GetStringSlice("style.footer_lines"),
			CreditLine:     v.GetString("style.credit_line"),
			PaymentDisplay: v.GetString("style.payment_display"),
			SingleRowLabel: v.GetString("style.single_row_label"),
			ShowOrigin:     v.GetBool("style.show_origin"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "receipt-relay"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxWebhookBytes == 0 {
		cfg.HTTP.MaxWebhookBytes = 64 << 10 // webhook bodies are small
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = 30 * time.Second
	}
	if cfg.Loyverse.BaseURL == "" {
		cfg.Loyverse.BaseURL = "https://api.loyverse.com/v1.0"
	}
	if cfg.Loyverse.Timeout == 0 {
		cfg.Loyverse.Timeout = 15 * time.Second
	}
	if cfg.Render.Engine == "" {
		cfg.Render.Engine = "wkhtmltoimage"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
	if cfg.Style.ShopName == "" {
		cfg.Style.ShopName = "SM Shop"
	}
	if len(cfg.Style.FooterLines) == 0 {
		cfg.Style.FooterLines = []string{"Thank You!"}
	}
	if cfg.Style.PaymentDisplay == "" {
		cfg.Style.PaymentDisplay = "itemized"
	}
	if cfg.Style.SingleRowLabel == "" {
		cfg.Style.SingleRowLabel = "Transfer"
	}
}

// validate performs validation on the configuration.
// The three credentials are required in every environment: the process must
// fail at startup rather than accept webhooks it can never deliver.
func (c *Config) validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (RELAY_TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required (RELAY_TELEGRAM_CHAT_ID)")
	}
	if c.Loyverse.AccessToken == "" {
		return fmt.Errorf("loyverse.access_token is required (RELAY_LOYVERSE_ACCESS_TOKEN)")
	}
	switch c.Render.Engine {
	case "wkhtmltoimage", "chromedp":
	default:
		return fmt.Errorf("render.engine must be 'wkhtmltoimage' or 'chromedp', got %q", c.Render.Engine)
	}
	switch c.Style.PaymentDisplay {
	case "itemized", "single_row":
	default:
		return fmt.Errorf("style.payment_display must be 'itemized' or 'single_row', got %q", c.Style.PaymentDisplay)
	}
	return nil
}

package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full application configuration tree. It is loaded once in
// main and passed down explicitly; nothing in the codebase reads a global.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Sepay    SepayConfig    `mapstructure:"sepay"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Email    EmailConfig    `mapstructure:"email"`
	Order    OrderConfig    `mapstructure:"order"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // hours
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	SiteName string `mapstructure:"site_name"`
}

// AdminConfig holds the single operator account. The storefront has no
// customer accounts; only the admin panel authenticates.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// SepayConfig describes the receiving bank account and the Sepay API.
type SepayConfig struct {
	APIKey        string `mapstructure:"api_key"`
	APIURL        string `mapstructure:"api_url"`
	AccountNumber string `mapstructure:"account_number"`
	AccountName   string `mapstructure:"account_name"`
	BankCode      string `mapstructure:"bank_code"`
	// WebhookKey guards the inbound webhook ("Apikey <key>" header). Empty
	// disables the check for local development.
	WebhookKey string `mapstructure:"webhook_key"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	// Comma-separated list of chat IDs; every alert goes to all of them.
	ChatIDs string `mapstructure:"chat_ids"`
}

// EmailConfig is SMTP credentials for customer mail (Gmail by default).
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// OrderConfig holds order-pipeline policy knobs.
type OrderConfig struct {
	ExpirationHours int   `mapstructure:"expiration_hours"` // pending orders older than this are cancelled
	AmountTolerance int64 `mapstructure:"amount_tolerance"` // VND, webhook amount matching
	WorkStartHour   int   `mapstructure:"work_start_hour"`  // delivery-estimate window start
	WorkEndHour     int   `mapstructure:"work_end_hour"`    // delivery-estimate window end (exclusive)
	PrepMinutes     int   `mapstructure:"prep_minutes"`     // promised manual-prep time inside the window
}

// TelegramChatIDs splits the configured chat id list.
func (c *TelegramConfig) TelegramChatIDs() []string {
	if c.ChatIDs == "" {
		return nil
	}
	parts := strings.Split(c.ChatIDs, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// Validate checks the parts the server cannot run without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}
	if c.Sepay.AccountNumber == "" || c.Sepay.BankCode == "" {
		return errors.New("sepay bank account configuration is incomplete")
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin credentials are required")
	}
	return nil
}

// Load reads config.yaml (or config.<env>.yaml) plus environment overrides
// and returns the validated configuration.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.site_name", "HaShopTech")
	v.SetDefault("sepay.api_url", "https://my.sepay.vn/userapi")
	v.SetDefault("order.expiration_hours", 1)
	v.SetDefault("order.amount_tolerance", 1000)
	v.SetDefault("order.work_start_hour", 7)
	v.SetDefault("order.work_end_hour", 24)
	v.SetDefault("order.prep_minutes", 30)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Explicit overrides for deploy environments where only flat env vars
	// are available.
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config собирается из переменных окружения и флагов и передается конструкторам явно.
// Никаких глобальных клиентов с ключами из env в пакетах быть не должно.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	JWTAccountSecret string `env:"JWT_ACCOUNT_SECRET"`

	GatewayBaseURL       string `env:"GATEWAY_URL"`
	GatewayKeyID         string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret     string `env:"GATEWAY_KEY_SECRET"`
	GatewayWebhookSecret string `env:"GATEWAY_WEBHOOK_SECRET"`

	WelcomeBonus        int64 `env:"WELCOME_BONUS"        envDefault:"50"`
	CreatorSharePercent int64 `env:"CREATOR_SHARE_PERCENT" envDefault:"70"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.GatewayKeySecret == "" || conf.GatewayWebhookSecret == "" {
		return nil, errors.New("gateway secrets are not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.GatewayBaseURL, "g", "https://api.razorpay.com", "Payment gateway base URL")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	merged := *envConfig
	merged.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	merged.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	merged.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	merged.GatewayBaseURL = defaultIfBlank(envConfig.GatewayBaseURL, flagsConfig.GatewayBaseURL)
	return &merged
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// Package config содержит логику чтения конфигурации сервиса Fecha Instalação.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultFreeBudgetLimit: максимальное число бюджетов у аккаунта без Pro.
const DefaultFreeBudgetLimit = 10

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	SessionSecret string `env:"SESSION_SECRET"`
	BaseURL       string `env:"BASE_URL"`

	KiwifyWebhookSecret string `env:"KIWIFY_WEBHOOK_SECRET"`
	// KiwifyAllowUnsigned отключает проверку подписи вебхука. Только для локальных тестов.
	KiwifyAllowUnsigned bool   `env:"KIWIFY_ALLOW_UNSIGNED_WEBHOOKS"`
	KiwifyCheckoutURL   string `env:"KIWIFY_CHECKOUT_URL"`

	AdminUIDs       []int64 `env:"ADMIN_UIDS" envSeparator:","`
	FreeBudgetLimit int     `env:"FREE_BUDGET_LIMIT"`
}

// Parse считывает конфигурацию из файла .env, переменных окружения и флагов командной строки.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	return ParseFiles(".env")
}

// ParseFiles работает как Parse, но загружает указанные .env файлы. Отсутствующие файлы пропускаются.
func ParseFiles(dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		// godotenv.Load не перезаписывает уже заданные переменные окружения.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envSessionSecret := cfg.SessionSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:8080"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.KiwifyWebhookSecret = strings.TrimSpace(cfg.KiwifyWebhookSecret)
	cfg.KiwifyCheckoutURL = strings.TrimSpace(cfg.KiwifyCheckoutURL)

	if cfg.FreeBudgetLimit <= 0 {
		cfg.FreeBudgetLimit = DefaultFreeBudgetLimit
	}

	return cfg, nil
}

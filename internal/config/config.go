package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	WebhookURL    string
	ListenAddr    string

	// Локальная база бота (postgres; пустое значение — sqlite-файл для разработки)
	DatabaseURL string

	// Подключение к базе Битрикса (только чтение)
	BitrixDSN string

	// REST-вебхук Битрикса для запуска бизнес-процесса
	BitrixWebhookURL string
	BitrixTemplateID string

	// Стадия сделок-автовозов в воронке
	CarrierStageID string
}

func LoadConfig() (*Config, error) {
	// .env нужен только локально; в бою переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		BitrixDSN:        os.Getenv("BITRIX_DSN"),
		BitrixWebhookURL: os.Getenv("BITRIX_WEBHOOK_URL"),
		BitrixTemplateID: getenv("BITRIX_TEMPLATE_ID", "4451"),
		CarrierStageID:   getenv("CARRIER_STAGE_ID", "C87:UC_5Y16D8"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN           string `mapstructure:"DB_DSN"`
	Environment     string `mapstructure:"ENV"`
	DefaultTimezone string `mapstructure:"DEFAULT_TIMEZONE"`
	MigrationsPath  string `mapstructure:"MIGRATIONS_PATH"`
	TutorID         int64  `mapstructure:"TUTOR_ID"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:           os.Getenv("DB_DSN"),
		Environment:     os.Getenv("ENV"),
		DefaultTimezone: os.Getenv("DEFAULT_TIMEZONE"),
		MigrationsPath:  os.Getenv("MIGRATIONS_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.DefaultTimezone == "" {
		// Запасная зона, если профиль репетитора недоступен или пуст
		cfg.DefaultTimezone = "Europe/Kyiv"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	if raw := os.Getenv("TUTOR_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TUTOR_ID must be an integer: %w", err)
		}
		cfg.TutorID = id
	} else {
		return nil, fmt.Errorf("TUTOR_ID is required but not set")
	}

	return cfg, nil
}

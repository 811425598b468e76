package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	JWTSecret      string
	DatabaseURL    string
	DatabaseConfig DatabaseConfig
	HTTPPort       string
	WSPort         string
	AppEnv         string // development включает показ self-swap в списках
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "fitswap_user"),
		Password: getEnv("PGPASSWORD", "fitswap_pass"),
		Name:     getEnv("PGDATABASE", "fitswap"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cfg := &Config{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DatabaseURL:    dbURL,
		DatabaseConfig: dbConfig,
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		WSPort:         getEnv("WS_PORT", "8081"),
		AppEnv:         getEnv("APP_ENV", "production"), // По умолчанию production
	}

	if cfg.JWTSecret == "" {
		log.Fatal("❌ Ошибка: Не задана обязательная переменная окружения JWT_SECRET")
	}

	return cfg
}

// IsDevelopment возвращает true для окружения разработки
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

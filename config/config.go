package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Remote marketplace API.
	APIBaseURL   string  `mapstructure:"API_BASE_URL"`
	APIRateLimit float64 `mapstructure:"API_RATE_LIMIT"`
	APIBurst     int     `mapstructure:"API_BURST"`

	// Firebase Auth (identity provider).
	FirebaseAPIKey   string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseAuthURL  string `mapstructure:"FIREBASE_AUTH_URL"`
	FirebaseTokenURL string `mapstructure:"FIREBASE_TOKEN_URL"`

	// Redis-backed token store.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisTokenDB  int    `mapstructure:"REDIS_TOKEN_DB"`

	// Origin allowed to call the local UI surface.
	UIOrigin string `mapstructure:"UI_ORIGIN"`

	// Notification categories counted toward each tab badge.
	RequesterBadgeTypes []string `mapstructure:"REQUESTER_BADGE_TYPES"`
	TaskerBadgeTypes    []string `mapstructure:"TASKER_BADGE_TYPES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "4780")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_BASE_URL", "https://api.taskmate.app")
	viper.SetDefault("API_RATE_LIMIT", 10.0)
	viper.SetDefault("API_BURST", 20)
	viper.SetDefault("FIREBASE_API_KEY", "")
	viper.SetDefault("FIREBASE_AUTH_URL", "https://identitytoolkit.googleapis.com/v1")
	viper.SetDefault("FIREBASE_TOKEN_URL", "https://securetoken.googleapis.com/v1")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_TOKEN_DB", 0)
	viper.SetDefault("UI_ORIGIN", "http://localhost:3000")
	viper.SetDefault("REQUESTER_BADGE_TYPES", []string{"received offer", "task completed", "chat"})
	viper.SetDefault("TASKER_BADGE_TYPES", []string{"offer accepted", "task cancelled", "chat"})

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

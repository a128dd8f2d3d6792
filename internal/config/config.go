package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总参考 API 服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabasePath       string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	GinMode            string
	CORSAllowedOrigins []string
	SeedUsername       string
	SeedEmail          string
	SeedPassword       string
}

// ClientConfig holds the settings of the terminal client.
type ClientConfig struct {
	APIURL      string
	SessionFile string
	LogFile     string
}

// LoadEnvFile loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadEnvFile() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] load .env: %v", err)
	}
}

// Load 从环境变量读取服务端配置，并为缺失项提供默认值。
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ttl := 24 * time.Hour
	if raw := env("TOKEN_TTL", ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		} else {
			log.Printf("[config] ignoring invalid TOKEN_TTL %q", raw)
		}
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabasePath:       env("DATABASE_PATH", "blogstory.db"),
		DatabaseURL:        env("DATABASE_URL", ""),
		JWTSecret:          env("JWT_SECRET", "blogstory-dev-secret"),
		TokenTTL:           ttl,
		GinMode:            env("GIN_MODE", "release"),
		CORSAllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "")),
		SeedUsername:       env("SEED_USERNAME", ""),
		SeedEmail:          env("SEED_EMAIL", ""),
		SeedPassword:       env("SEED_PASSWORD", ""),
	}
}

// LoadClient reads the terminal client configuration.
func LoadClient() ClientConfig {
	sessionFile := env("BLOGSTORY_SESSION_FILE", "")
	if sessionFile == "" {
		sessionFile = defaultSessionFile()
	}

	return ClientConfig{
		APIURL:      strings.TrimRight(env("BLOGSTORY_API_URL", "http://localhost:8080/api"), "/"),
		SessionFile: sessionFile,
		LogFile:     env("BLOGSTORY_LOG_FILE", ""),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "blogstory", "session.json")
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

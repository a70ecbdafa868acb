// Package config loads runtime settings from the environment.
//
// A .env file in the working directory (or one or two levels up) is read
// first; variables already set in the environment win.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Jobs       JobsConfig
	Automation AutomationConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StorageConfig struct {
	UploadDir string
	StaticDir string
}

type JobsConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type AutomationConfig struct {
	// Script is the path of the YAML step file; empty selects the dry-run processor.
	Script   string
	Headless bool
}

type LoggerConfig struct {
	Level string
}

// Load reads the configuration. Malformed numbers fall back to defaults.
func Load() *Config {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:         getInt("PORT", 8080),
			ReadTimeout:  time.Duration(getInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			StaticDir: getEnv("STATIC_DIR", "static"),
		},
		Jobs: JobsConfig{
			TTL:             time.Duration(getInt("JOB_TTL_MINUTES", 30)) * time.Minute,
			CleanupInterval: time.Duration(getInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		},
		Automation: AutomationConfig{
			Script:   getEnv("AUTOMATION_SCRIPT", ""),
			Headless: getBool("BROWSER_HEADLESS", true),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// getBool accepts the strconv.ParseBool spellings ("1", "t", "TRUE", ...)
// and keeps the default for anything else.
func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

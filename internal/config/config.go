package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	WorkerCount   int
	BatchSize     int
	BannedTags    []string
	IDClassStyle  string
	LogLevel      string
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		WorkerCount:   getEnvInt("FTL_LINT_WORKERS", 8),
		BatchSize:     getEnvInt("FTL_LINT_BATCH_SIZE", 100),
		BannedTags:    getEnvList("FTL_LINT_BANNED_TAGS", []string{"style", "i"}),
		IDClassStyle:  getEnv("FTL_LINT_ID_CLASS_STYLE", "dash"),
		LogLevel:      getEnv("FTL_LINT_LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/ftl_htmllint?sslmode=disable"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvList splits a comma-separated variable. A variable set to "-"
// yields an empty list.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if v == "-" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

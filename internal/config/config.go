// Package config centralises all environment / flag configuration for the API.
// It should be imported only by `cmd/server` (and test code). Business‑logic
// layers receive an already‑built Config instance via dependency‑injection.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultExtensions is the allowed set of source-file extensions considered
// during repository ingestion when FILE_EXTENSIONS is not set.
var defaultExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx",
	".java", ".c", ".cpp", ".cs", ".go", ".rb", ".php", ".html",
}

// Config holds every runtime option the server needs.
// Keep it flat and simple; prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data stores
	SQLitePath          string
	MongoURI            string
	DBName              string
	MongoConnectTimeout time.Duration

	// External services
	GitHubToken string
	ProjectID   string
	Location    string

	// Ingestion
	FileExtensions []string
	IngestWorkers  int

	// Timeout boundaries for external calls
	FetchTimeout    time.Duration
	GenerateTimeout time.Duration

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// Every option has a default. MONGODB_URI and GCP_PROJECT_ID may be left
// empty: the server then falls back to the in-memory vector store and
// placeholder AI clients, which is only useful for local development.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist, safe in production.
	_ = godotenv.Load()

	return Config{
		Port:                getEnv("PORT", "8000"),
		SQLitePath:          getEnv("SQLITE_PATH", "./data/repositories.db"),
		MongoURI:            getEnv("MONGODB_URI", ""),
		DBName:              getEnv("MONGODB_DB", "devcompass"),
		MongoConnectTimeout: getDuration("MONGO_CONNECT_TIMEOUT_SEC", 10),
		GitHubToken:         getEnv("GITHUB_PERSONAL_ACCESS_TOKEN", ""),
		ProjectID:           getEnv("GCP_PROJECT_ID", ""),
		Location:            getEnv("GCP_LOCATION", "us-central1"),
		FileExtensions:      getList("FILE_EXTENSIONS", defaultExtensions),
		IngestWorkers:       getInt("INGEST_WORKERS", 4),
		FetchTimeout:        getDuration("FETCH_TIMEOUT_SEC", 30),
		GenerateTimeout:     getDuration("GENERATE_TIMEOUT_SEC", 60),
		ReadTimeout:         getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:        getDuration("WRITE_TIMEOUT_SEC", 10),
	}
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt reads a positive integer from env, falling back to defaultVal.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

// getList reads a comma-separated list from env, falling back to defaultVal.
func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}

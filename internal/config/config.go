package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:8000/api/v1"

// Config is the client side configuration used by the CLI.
type Config struct {
	APIURL         string
	InternalAPIURL string
	Env            string
	SessionDB      string
	HTTPTimeout    time.Duration
	Notify         string
	OTLPEndpoint   string
	OTLPInsecure   bool
}

// BaseURL picks the API root. Server side callers prefer the internal URL
// when one is configured.
func (c Config) BaseURL(serverSide bool) string {
	if serverSide && c.InternalAPIURL != "" {
		return c.InternalAPIURL
	}
	return c.APIURL
}

func Load() Config {
	loadDotEnv()

	apiURL := os.Getenv("TRAX_API_URL")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	sessionDB := os.Getenv("TRAX_SESSION_DB")
	if sessionDB == "" {
		sessionDB = defaultSessionDB()
	}
	notify := os.Getenv("TRAX_NOTIFY")
	if notify == "" {
		notify = "log"
	}

	return Config{
		APIURL:         strings.TrimRight(apiURL, "/"),
		InternalAPIURL: strings.TrimRight(os.Getenv("TRAX_INTERNAL_API_URL"), "/"),
		Env:            environment(),
		SessionDB:      sessionDB,
		HTTPTimeout:    readSeconds("TRAX_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		Notify:         notify,
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:   os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}
}

// ServerConfig configures cmd/trax-api.
type ServerConfig struct {
	Port               string
	Prefix             string
	Env                string
	DatabaseURL        string
	TokenTTL           time.Duration
	ReadRatePerMinute  int
	ReadRateBurst      int
	WriteRatePerMinute int
	WriteRateBurst     int
	OTLPEndpoint       string
	OTLPInsecure       bool
}

func LoadServer() ServerConfig {
	loadDotEnv()

	port := os.Getenv("TRAX_API_PORT")
	if port == "" {
		port = "8000"
	}
	prefix, ok := os.LookupEnv("TRAX_API_PREFIX")
	if !ok {
		prefix = "/api/v1"
	}

	return ServerConfig{
		Port:               port,
		Prefix:             strings.TrimRight(prefix, "/"),
		Env:                environment(),
		DatabaseURL:        os.Getenv("DB_DSN"),
		TokenTTL:           time.Duration(readInt("TRAX_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		ReadRatePerMinute:  readInt("TRAX_READ_RATE_PER_MIN", 10),
		ReadRateBurst:      readInt("TRAX_READ_RATE_BURST", 10),
		WriteRatePerMinute: readInt("TRAX_WRITE_RATE_PER_MIN", 5),
		WriteRateBurst:     readInt("TRAX_WRITE_RATE_BURST", 5),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:       os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}
}

func environment() string {
	if env := os.Getenv("TRAX_ENV"); env != "" {
		return env
	}
	return "development"
}

var dotEnvOnce sync.Once

// loadDotEnv reads ./.env once. Variables already set in the environment win.
func loadDotEnv() {
	dotEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("dotenv load error: %v", err)
		}
	})
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "trax-session.db"
	}
	return filepath.Join(dir, "trax", "session.db")
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readSeconds(key string, fallback time.Duration) time.Duration {
	seconds := readInt(key, -1)
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

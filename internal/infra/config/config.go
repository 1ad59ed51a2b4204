// internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment driven settings for the whole service.
type Config struct {
	Port string

	GCSBucket                string
	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Guest store. Empty RedisAddr selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GuestTTL      time.Duration

	// Tickets: "firestore" (default) or "postgres".
	TicketBackend      string
	DatabaseURL        string
	TicketPollInterval time.Duration

	SendGridAPIKey   string
	SendGridSecretID string // resolved through Secret Manager when SendGridAPIKey is empty
	SendGridFrom     string
	AppBaseURL       string

	CORSAllowedOrigins []string
	DefaultShipping    float64
	LowStockThreshold  int

	LogFile      string
	LogMaxSizeMB int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "storefront-dev")

	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		GuestTTL:      time.Duration(getenvInt("GUEST_TTL_HOURS", 24*30)) * time.Hour,

		TicketBackend:      strings.ToLower(getenvDefault("TICKET_BACKEND", "firestore")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		TicketPollInterval: getenvDuration("TICKET_POLL_INTERVAL", 3*time.Second),

		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridSecretID: os.Getenv("SENDGRID_SECRET_ID"),
		SendGridFrom:     os.Getenv("SENDGRID_FROM"),
		AppBaseURL:       strings.TrimRight(getenvDefault("APP_BASE_URL", "http://localhost:8081"), "/"),

		CORSAllowedOrigins: splitCSV(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),
		DefaultShipping:    getenvFloat("DEFAULT_SHIPPING_FEE", 5),
		LowStockThreshold:  getenvInt("LOW_STOCK_THRESHOLD", 5),

		LogFile:      os.Getenv("LOG_FILE"),
		LogMaxSizeMB: getenvInt("LOG_MAX_SIZE_MB", 50),
	}

	return cfg
}

func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

// UsePostgresTickets reports whether tickets live in PostgreSQL.
func (c *Config) UsePostgresTickets() bool {
	return c.TicketBackend == "postgres" && strings.TrimSpace(c.DatabaseURL) != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] WARN: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] WARN: %s=%q is not a valid amount, using %v", key, v, def)
		return def
	}
	return f
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] WARN: %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

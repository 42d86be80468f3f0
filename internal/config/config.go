package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// NetworkCredentials holds the Graph API credentials for one client on one
// social network.
type NetworkCredentials struct {
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
}

// Clients maps client name -> network name -> credentials. It is loaded once
// at startup from the CLIENTS env blob and never mutated afterwards.
type Clients map[string]map[string]NetworkCredentials

type Config struct {
	MongoDBURI   string
	DatabaseName string

	GraphAPIVersion string
	RequestTimeout  time.Duration
	MaxPages        int

	ServerPort    string
	DashboardPort string

	// Authentication for the scheduler dashboard (required)
	WebAuthUser     string
	WebAuthPassword string

	// Task configuration
	IngestSchedule  string
	RefreshSchedule string

	// EngagementStrategy selects the Facebook rate formula: "counts" or
	// "engaged_users".
	EngagementStrategy string

	// InsightMode selects when insights are fetched: "at_write" or "deferred".
	InsightMode string

	Clients Clients
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoDBURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:       getEnv("DATABASE_NAME", "social_insights"),
		GraphAPIVersion:    getEnv("GRAPH_API_VERSION", "v19.0"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxPages:           getEnvInt("MAX_PAGES", 100),
		ServerPort:         getEnv("SERVER_PORT", "8081"),
		DashboardPort:      getEnv("DASHBOARD_PORT", "8080"),
		WebAuthUser:        getEnv("WEB_AUTH_USER", "admin"),
		WebAuthPassword:    getEnv("WEB_AUTH_PASSWORD", "password"),
		IngestSchedule:     getEnv("INGEST_SCHEDULE", "@every 24h"),
		RefreshSchedule:    getEnv("REFRESH_SCHEDULE", "@every 24h"),
		EngagementStrategy: getEnv("ENGAGEMENT_STRATEGY", "counts"),
		InsightMode:        getEnv("INSIGHT_MODE", "deferred"),
	}

	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.WebAuthUser == "" || cfg.WebAuthPassword == "" {
		return nil, fmt.Errorf("WEB_AUTH_USER and WEB_AUTH_PASSWORD are required")
	}

	clients, err := parseClients(os.Getenv("CLIENTS"))
	if err != nil {
		return nil, err
	}
	cfg.Clients = clients

	return cfg, nil
}

// parseClients decodes the CLIENTS env blob. A missing or malformed blob is
// fatal: without credentials there is nothing to ingest.
func parseClients(raw string) (Clients, error) {
	if raw == "" {
		return nil, fmt.Errorf("CLIENTS is required")
	}

	var clients Clients
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		return nil, fmt.Errorf("parsing CLIENTS: %w", err)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("CLIENTS contains no clients")
	}

	return clients, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2/google"
)

const (
	TokenStoreFirestore = "firestore"
	TokenStorePostgres  = "postgres"
)

type Config struct {
	Port     string
	LogLevel string

	GoogleProjectID     string
	FirebaseCredentials string
	StorageBucket       string
	AppURL              string

	TokenStore  string
	DatabaseURL string

	EventsJWTSecret     string
	StorageSubscription string
	WatchMessages       bool

	ModerationThreshold string
	ConvertBin          string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	watch, _ := strconv.ParseBool(getEnv("WATCH_MESSAGES", "false"))

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		AppURL:              getEnv("APP_URL", ""),
		TokenStore:          strings.ToLower(getEnv("TOKEN_STORE", TokenStoreFirestore)),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		EventsJWTSecret:     getEnv("EVENTS_JWT_SECRET", ""),
		StorageSubscription: getEnv("STORAGE_SUBSCRIPTION", ""),
		WatchMessages:       watch,
		ModerationThreshold: strings.ToUpper(getEnv("MODERATION_THRESHOLD", "VERY_LIKELY")),
		ConvertBin:          getEnv("CONVERT_BIN", "convert"),
	}
	cfg.applyProjectDefaults()
	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreFirestore:
	case TokenStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TOKEN_STORE=%s", TokenStorePostgres)
		}
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore)
	}
	switch c.ModerationThreshold {
	case "LIKELY", "VERY_LIKELY":
	default:
		return fmt.Errorf("MODERATION_THRESHOLD must be LIKELY or VERY_LIKELY, got %q", c.ModerationThreshold)
	}
	if c.GoogleProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is not set and could not be discovered from credentials")
	}
	return nil
}

// DiscoverProjectID fills GoogleProjectID when it was not configured
// explicitly: first from the FIREBASE_CREDENTIALS key file, then from
// Application Default Credentials.
func (c *Config) DiscoverProjectID(ctx context.Context) {
	if c.GoogleProjectID != "" {
		return
	}
	projectID := projectFromCredentials(ctx, c.FirebaseCredentials)
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx)
		if err != nil {
			return
		}
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return
	}
	c.GoogleProjectID = projectID
	c.applyProjectDefaults()
}

func projectFromCredentials(ctx context.Context, file string) string {
	if file == "" {
		return ""
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	creds, err := google.CredentialsFromJSON(ctx, data)
	if err != nil {
		return ""
	}
	return creds.ProjectID
}

func (c *Config) applyProjectDefaults() {
	if c.GoogleProjectID == "" {
		return
	}
	if c.StorageBucket == "" {
		c.StorageBucket = c.GoogleProjectID + ".appspot.com"
	}
	if c.AppURL == "" {
		c.AppURL = "https://" + c.GoogleProjectID + ".firebaseapp.com"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

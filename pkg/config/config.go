package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"virtualitems/pkg/errors"
)

const (
	SourceFunctions = "functions"
	SourceFirestore = "firestore"
	SourceStorage   = "storage"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	FirebaseProject   string
	FirebaseApiKey    string
	FirebaseRegion    string
	AppID             string
	FunctionsBaseURL  string
	FunctionsEmulator string
	RefreshToken      string

	ServiceAccountPath string
	ServiceAccountJSON string
	StorageBucket      string

	CatalogReadSource string
	ThumbnailSource   string

	ThumbnailCacheDir      string
	ThumbnailMemoryEntries int

	RequestTimeout        time.Duration
	IDBatchSize           int
	PurchaseRatePerMinute int
	AdminUIDs             []string
	AllowedOrigins        []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:    getEnv("FIREBASE_API_KEY", ""),
		FirebaseRegion:    getEnv("FIREBASE_REGION", "us-central1"),
		AppID:             getEnv("RGN_APP_ID", ""),
		FunctionsBaseURL:  getEnv("FUNCTIONS_BASE_URL", ""),
		FunctionsEmulator: getEnv("FUNCTIONS_EMULATOR_HOST", ""),
		RefreshToken:      getEnv("FIREBASE_REFRESH_TOKEN", ""),

		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),

		CatalogReadSource: strings.ToLower(getEnv("CATALOG_READ_SOURCE", SourceFunctions)),
		ThumbnailSource:   strings.ToLower(getEnv("THUMBNAIL_SOURCE", SourceFunctions)),

		ThumbnailCacheDir:      getEnv("THUMBNAIL_CACHE_DIR", "./cache/thumbnails"),
		ThumbnailMemoryEntries: int(getEnvAsInt64("THUMBNAIL_MEMORY_ENTRIES", 128)),

		RequestTimeout:        time.Duration(getEnvAsInt64("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		IDBatchSize:           int(getEnvAsInt64("ID_BATCH_SIZE", 50)),
		PurchaseRatePerMinute: int(getEnvAsInt64("PURCHASE_RATE_PER_MINUTE", 10)),
		AdminUIDs:             getEnvAsList("ADMIN_UIDS"),
		AllowedOrigins:        getEnvAsList("WS_ALLOWED_ORIGINS"),
	}

	return config, nil
}

// Validate checks the values every entry point needs.
func (c *Config) Validate() error {
	if c.FirebaseProject == "" {
		return errors.Validation("FIREBASE_PROJECT_ID is required")
	}
	if c.AppID == "" {
		return errors.Validation("RGN_APP_ID is required")
	}
	switch c.CatalogReadSource {
	case SourceFunctions, SourceFirestore:
	default:
		return errors.Validation("CATALOG_READ_SOURCE must be one of: functions firestore")
	}
	switch c.ThumbnailSource {
	case SourceFunctions:
	case SourceStorage:
		if c.StorageBucket == "" {
			return errors.Validation("STORAGE_BUCKET is required when THUMBNAIL_SOURCE=storage")
		}
	default:
		return errors.Validation("THUMBNAIL_SOURCE must be one of: functions storage")
	}
	if c.IDBatchSize <= 0 {
		return errors.Validation("ID_BATCH_SIZE must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

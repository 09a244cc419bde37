package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Sheets SheetsConfig
	Mongo  MongoConfig
	Cache  CacheConfig
	QR     QRConfig
	Vocab  VocabConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// SheetsConfig contains configuration required to reach the Logs worksheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	LogRange        string
}

// MongoConfig holds settings for the trace-report archive.
type MongoConfig struct {
	URI    string
	DBName string
}

// CacheConfig holds the event-log cache refresh settings.
type CacheConfig struct {
	RefreshSchedule string
}

// QRConfig holds settings for the external QR renderer.
type QRConfig struct {
	BaseURL string
	Size    int
}

// VocabConfig locates the station/series/model vocabulary file.
type VocabConfig struct {
	Path string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	qrSize, err := strconv.Atoi(getenvWithDefault("QR_IMAGE_SIZE", "300"))
	if err != nil {
		return nil, fmt.Errorf("QR_IMAGE_SIZE must be numeric: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_LOG_ID"),
			LogRange:        getenvWithDefault("SHEET_LOG_RANGE", "Logs!A:M"),
		},
		Mongo: MongoConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "wiptrace"),
		},
		Cache: CacheConfig{
			RefreshSchedule: getenvWithDefault("EVENT_CACHE_REFRESH", "@every 2m"),
		},
		QR: QRConfig{
			BaseURL: getenvWithDefault("QR_RENDER_BASE_URL", "https://api.qrserver.com/v1/create-qr-code"),
			Size:    qrSize,
		},
		Vocab: VocabConfig{
			Path: getenvWithDefault("VOCAB_PATH", "config/vocab.yaml"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Sheets.CredentialsPath == "":
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	case c.Sheets.SpreadsheetID == "":
		return errors.New("GOOGLE_SHEET_LOG_ID must be provided")
	case c.Sheets.LogRange == "":
		return errors.New("SHEET_LOG_RANGE must not be empty")
	}

	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.Mongo.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Cache.RefreshSchedule == "" {
		return errors.New("EVENT_CACHE_REFRESH must be provided")
	}

	if c.QR.BaseURL == "" {
		return errors.New("QR_RENDER_BASE_URL must not be empty")
	}
	if c.QR.Size <= 0 {
		return errors.New("QR_IMAGE_SIZE must be positive")
	}

	if c.Vocab.Path == "" {
		return errors.New("VOCAB_PATH must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

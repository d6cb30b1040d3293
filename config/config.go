package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSchema   string `envconfig:"DB_SCHEMA" default:"orcid_source"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Alle Quellen-APIs erwarten einen identifizierenden Client-Header.
	ClientLabel string `envconfig:"CLIENT_LABEL" default:"scholar-sync/1.0"`
	MailTo      string `envconfig:"MAILTO"`

	CrossrefBaseURL string `envconfig:"CROSSREF_BASE_URL" default:"https://api.crossref.org"`
	DBLPBaseURL     string `envconfig:"DBLP_BASE_URL" default:"https://dblp.org"`
	OrcidBaseURL    string `envconfig:"ORCID_BASE_URL" default:"https://pub.orcid.org/v3.0"`

	// Ergebnis-Limit pro Suchanfrage (row cap, kein Rate-Limiting).
	SearchRows int `envconfig:"SEARCH_ROWS" default:"50"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`

	// Provider-Konfiguration
	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"crossref,dblp,orcid"`

	// Optionales Rohdaten-Archiv (S3). Leerer Bucket = Archivierung aus.
	StratoS3Key    string `envconfig:"STRATO_S3_KEY"`
	StratoS3Secret string `envconfig:"STRATO_S3_SECRET"`
	StratoS3URL    string `envconfig:"STRATO_S3_URL"`
	StratoS3Region string `envconfig:"STRATO_S3_REGION"`
	StratoS3Bucket string `envconfig:"STRATO_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable search_path=%s,public",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSchema)
}

// UserAgent baut den Header-Wert für den "Polite Pool" der Quellen-APIs.
func (c *Config) UserAgent() string {
	if c.MailTo != "" {
		return fmt.Sprintf("%s (mailto:%s)", c.ClientLabel, c.MailTo)
	}
	return c.ClientLabel
}

// ArchiveEnabled meldet, ob Rohdaten nach S3 archiviert werden sollen.
func (c *Config) ArchiveEnabled() bool {
	return c.StratoS3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

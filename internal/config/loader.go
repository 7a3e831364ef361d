// Package config loads runtime configuration from the process environment,
// with optional dotenv profiles for local and production setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	// BaseURL is the externally reachable origin used in cancellation links.
	BaseURL string

	AdminUsername string
	AdminPassword string

	MailEnabled  bool
	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
}

// Load reads the dotenv profile for the current environment and then parses
// configuration from the process environment. Real environment variables win
// over dotenv entries. Required values are collected and reported together.
func Load() (Config, error) {
	loadDotenv()

	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:roombooking.db?_foreign_keys=on",
		BaseURL:   "http://localhost:8080",
		MailPort:  587,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("ROOMBOOKING_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ROOMBOOKING_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if baseURL := strings.TrimSpace(os.Getenv("ROOMBOOKING_BASE_URL")); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	cfg.AdminUsername = strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		invalid = append(invalid, "ADMIN_USERNAME/ADMIN_PASSWORD")
	}

	if enabledValue := strings.TrimSpace(os.Getenv("MAIL_ENABLED")); enabledValue != "" {
		enabled, err := strconv.ParseBool(enabledValue)
		if err != nil {
			invalid = append(invalid, "MAIL_ENABLED")
		} else {
			cfg.MailEnabled = enabled
		}
	}

	cfg.MailHost = strings.TrimSpace(os.Getenv("MAIL_HOST"))
	if portValue := strings.TrimSpace(os.Getenv("MAIL_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MAIL_PORT")
		} else {
			cfg.MailPort = port
		}
	}
	cfg.MailUsername = strings.TrimSpace(os.Getenv("MAIL_USERNAME"))
	cfg.MailPassword = os.Getenv("MAIL_PASSWORD")
	cfg.MailFrom = strings.TrimSpace(os.Getenv("MAIL_FROM"))

	if cfg.MailEnabled {
		if cfg.MailHost == "" {
			missing = append(missing, "MAIL_HOST")
		}
		if cfg.MailFrom == "" {
			missing = append(missing, "MAIL_FROM")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// loadDotenv loads the dotenv profile selected by ENVIRONMENT. A missing
// file is not an error; deployments can rely on real environment variables.
func loadDotenv() {
	profile := ".env"
	if env := strings.TrimSpace(os.Getenv("ENVIRONMENT")); env != "" && env != "development" {
		profile = ".env." + env
	}
	_ = godotenv.Load(profile)
}

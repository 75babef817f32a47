package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the car wash
// operations service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	BusinessName      string
	MinPasswordLength int
	AdminEmail        string
	AdminPassword     string
	ExportDir         string
	SeedDemo          bool
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting every missing or malformed entry at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:carwash.db?_pragma=busy_timeout(5000)",
		BusinessName:      "Tidal Wave Car Wash",
		MinPasswordLength: 6,
		ExportDir:         ".",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CARWASH_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CARWASH_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CARWASH_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if name := strings.TrimSpace(os.Getenv("CARWASH_BUSINESS_NAME")); name != "" {
		cfg.BusinessName = name
	}

	if lengthValue := strings.TrimSpace(os.Getenv("CARWASH_MIN_PASSWORD_LENGTH")); lengthValue != "" {
		length, err := strconv.Atoi(lengthValue)
		if err != nil || length <= 0 {
			invalid = append(invalid, "CARWASH_MIN_PASSWORD_LENGTH")
		} else {
			cfg.MinPasswordLength = length
		}
	}

	if email := strings.TrimSpace(os.Getenv("CARWASH_ADMIN_EMAIL")); email == "" {
		missing = append(missing, "CARWASH_ADMIN_EMAIL")
	} else {
		cfg.AdminEmail = strings.ToLower(email)
	}

	if password := strings.TrimSpace(os.Getenv("CARWASH_ADMIN_PASSWORD")); password == "" {
		missing = append(missing, "CARWASH_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if dir := strings.TrimSpace(os.Getenv("CARWASH_EXPORT_DIR")); dir != "" {
		cfg.ExportDir = dir
	}

	if demoValue := strings.TrimSpace(os.Getenv("CARWASH_SEED_DEMO")); demoValue != "" {
		demo, err := strconv.ParseBool(demoValue)
		if err != nil {
			invalid = append(invalid, "CARWASH_SEED_DEMO")
		} else {
			cfg.SeedDemo = demo
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

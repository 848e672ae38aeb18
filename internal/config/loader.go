package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration for the classtrack service.
type Config struct {
	HTTPPort               int
	SQLiteDSN              string
	Timezone               string
	Location               *time.Location
	GenerationHorizonYears int
	CancelLookaheadYears   int
	MaxParticipants        int
	ShutdownTimeout        time.Duration
}

// Load parses configuration from the process environment. A .env file in the
// working directory is read first when present; real environment variables
// win over file entries.
//
// All values have defaults, so an empty environment yields a working
// configuration. Invalid values are reported, not silently replaced.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:               8080,
		SQLiteDSN:              "file:classtrack.db?_pragma=foreign_keys(1)",
		Timezone:               "UTC",
		GenerationHorizonYears: 1,
		CancelLookaheadYears:   2,
		MaxParticipants:        50,
		ShutdownTimeout:        10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CLASSTRACK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CLASSTRACK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CLASSTRACK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("CLASSTRACK_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		invalid = append(invalid, "CLASSTRACK_TIMEZONE")
	} else {
		cfg.Location = location
	}

	if value := strings.TrimSpace(os.Getenv("CLASSTRACK_GENERATION_HORIZON_YEARS")); value != "" {
		years, err := strconv.Atoi(value)
		if err != nil || years <= 0 {
			invalid = append(invalid, "CLASSTRACK_GENERATION_HORIZON_YEARS")
		} else {
			cfg.GenerationHorizonYears = years
		}
	}

	if value := strings.TrimSpace(os.Getenv("CLASSTRACK_CANCEL_LOOKAHEAD_YEARS")); value != "" {
		years, err := strconv.Atoi(value)
		if err != nil || years <= 0 {
			invalid = append(invalid, "CLASSTRACK_CANCEL_LOOKAHEAD_YEARS")
		} else {
			cfg.CancelLookaheadYears = years
		}
	}

	if value := strings.TrimSpace(os.Getenv("CLASSTRACK_MAX_PARTICIPANTS")); value != "" {
		max, err := strconv.Atoi(value)
		if err != nil || max <= 0 {
			invalid = append(invalid, "CLASSTRACK_MAX_PARTICIPANTS")
		} else {
			cfg.MaxParticipants = max
		}
	}

	if value := strings.TrimSpace(os.Getenv("CLASSTRACK_SHUTDOWN_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CLASSTRACK_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

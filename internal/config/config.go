package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DBBackend string

	// Postgres (primary relational store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SQLite (embedded store for local development)
	SQLiteDBPath string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBBackend: getEnv("DB_BACKEND", "postgres"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", "1234"),
		DBName:     getEnv("DB_NAME", "expense_manager"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
	}
}

// PostgresDSN builds the connection string for the Postgres store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"postgres", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DBBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid db backend '%s': must be one of %v", c.DBBackend, validBackends))
	}

	// Validate Postgres configuration if backend is postgres
	if c.DBBackend == "postgres" {
		if c.DBHost == "" {
			errors = append(errors, "database host cannot be empty when using postgres backend")
		}
		if c.DBUser == "" {
			errors = append(errors, "database user cannot be empty when using postgres backend")
		}
		if c.DBName == "" {
			errors = append(errors, "database name cannot be empty when using postgres backend")
		}
		if port, err := strconv.Atoi(c.DBPort); err != nil {
			errors = append(errors, fmt.Sprintf("invalid database port '%s': must be a number", c.DBPort))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid database port %d: must be between 1 and 65535", port))
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DBBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

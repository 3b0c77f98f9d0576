package postgres

import "fmt"

// Config holds Postgres connection settings
type Config struct {
	// URL is a full connection string; when set it wins over the fields below
	URL string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns int32
}

// DefaultConfig returns sensible defaults for local development
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "flagduel",
		SSLMode:  "disable",
		MaxConns: 10,
	}
}

// DSN returns the Postgres connection URL
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

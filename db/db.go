package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// DB holds the catalog database connection
var DB *sql.DB

// Settings describes how to reach the catalog database
type Settings struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnString returns the URL when set, otherwise builds a keyword/value connection string
func (s Settings) ConnString() (string, error) {
	if s.URL != "" {
		return s.URL, nil
	}
	if s.Host == "" || s.User == "" || s.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}

	port := s.Port
	if port == "" {
		port = "5432"
	}
	sslmode := s.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.Host, port, s.User, s.Password, s.Name, sslmode), nil
}

// Configured reports whether any database settings were provided
func (s Settings) Configured() bool {
	return s.URL != "" || s.Host != ""
}

// InitDB opens and pings the catalog database
func InitDB(ctx context.Context, settings Settings, log logrus.FieldLogger) error {
	connStr, err := settings.ConnString()
	if err != nil {
		return err
	}

	DB, err = sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	DB.SetMaxOpenConns(10)
	DB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infof("✓ Catalog database connection established successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

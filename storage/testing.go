package storage

import (
	"database/sql"
	"fmt"

	"github.com/loganlanou/profiledesk/storage/db"
	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB creates an in-memory SQLite database for testing
func NewTestDB() (*sql.DB, *db.Queries, func(), error) {
	// Create in-memory database
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open test database: %w", err)
	}
	// every pooled connection would get its own empty :memory: database
	database.SetMaxOpenConns(1)

	// Run migrations
	if err := migrate(database); err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	queries := db.New(database)

	// Cleanup function
	cleanup := func() {
		database.Close()
	}

	return database, queries, cleanup, nil
}

// NewTestStorage wraps NewTestDB in a Storage
func NewTestStorage() (*Storage, func(), error) {
	database, queries, cleanup, err := NewTestDB()
	if err != nil {
		return nil, nil, err
	}
	return &Storage{db: database, Queries: queries}, cleanup, nil
}

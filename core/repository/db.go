package repository

import (
	"database/sql"
)

// DB wraps a database handle for one of the two metric stores
type DB struct {
	*sql.DB
}

// NewDB opens a database handle and verifies connectivity
func NewDB(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db}, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/UnicornIn/distribuidores/internal/config"
	_ "github.com/lib/pq"
)

// queryTimeout acota toda operación individual contra PostgreSQL
const queryTimeout = 30 * time.Second

// DB representa la conexión a la base de datos
type DB struct {
	*sql.DB
}

// Connect establece la conexión a PostgreSQL y configura el pool
func Connect(cfg *config.Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &DB{db}, nil
}

// Close cierra la conexión a la base de datos
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifica que la base de datos responde consultas
func (db *DB) HealthCheck() error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.QueryContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	return nil
}

// ExecWithTimeout ejecuta una sentencia con el timeout estándar
func (db *DB) ExecWithTimeout(query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return db.ExecContext(ctx, query, args...)
}

// QueryWithTimeout ejecuta una consulta de lectura con el timeout estándar
func (db *DB) QueryWithTimeout(query string, args ...interface{}) (*sql.Rows, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return db.QueryContext(ctx, query, args...)
}

// QueryRowWithTimeout ejecuta una consulta de una fila con el timeout estándar
func (db *DB) QueryRowWithTimeout(query string, args ...interface{}) *sql.Row {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return db.QueryRowContext(ctx, query, args...)
}

// WithTransaction ejecuta una función dentro de una transacción con
// rollback automático ante error o panic
func (db *DB) WithTransaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %w, original error: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

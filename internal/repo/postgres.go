package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT UNIQUE NOT NULL,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS saved_calculations (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	calculator_id TEXT NOT NULL,
	calculator_name TEXT NOT NULL,
	icon_key TEXT NOT NULL DEFAULT '',
	input JSONB NOT NULL,
	output JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS favorites (
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	calculator_id TEXT NOT NULL,
	calculator_name TEXT NOT NULL,
	icon_key TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (user_id, calculator_id)
);`

// Open connects to Postgres and creates the tables when missing. A DSN without
// sslmode gets sslmode=require.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr += sep + "sslmode=require"
		} else {
			connStr += " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return 0, ErrUserTaken
	}
	return id, err
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveCalculation(ctx context.Context, userID int, c SavedCalculation) (int, error) {
	var id int
	query := `INSERT INTO saved_calculations (user_id, calculator_id, calculator_name, icon_key, input, output)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, userID, c.CalculatorID, c.CalculatorName, c.IconKey,
		[]byte(c.InputSnapshot), nullJSON(c.OutputSnapshot)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save calculation: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListSaved(ctx context.Context, userID int) ([]SavedCalculation, error) {
	query := `SELECT id, calculator_id, calculator_name, icon_key, input, output, created_at
		FROM saved_calculations WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	defer rows.Close()

	var out []SavedCalculation
	for rows.Next() {
		var c SavedCalculation
		var input, output []byte
		if err := rows.Scan(&c.ID, &c.CalculatorID, &c.CalculatorName, &c.IconKey, &input, &output, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.InputSnapshot = input
		if output != nil {
			c.OutputSnapshot = output
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ToggleFavorite(ctx context.Context, userID int, f Favorite) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE user_id=$1 AND calculator_id=$2", userID, f.CalculatorID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO favorites (user_id, calculator_id, calculator_name, icon_key, category) VALUES ($1, $2, $3, $4, $5)",
			userID, f.CalculatorID, f.CalculatorName, f.IconKey, f.Category)
		if err != nil {
			return false, fmt.Errorf("toggle favorite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return removed == 0, nil
}

func (r *PostgresRepository) CheckFavorite(ctx context.Context, userID int, calculatorID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id=$1 AND calculator_id=$2)"
	if err := r.db.QueryRowContext(ctx, query, userID, calculatorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"fleetyard/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS trains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		train_number TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS train_car_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS train_cars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		train_id INTEGER,
		type_id INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		baggage_capacity REAL NOT NULL,
		comfort_level INTEGER NOT NULL,
		additional_info TEXT,
		FOREIGN KEY (type_id) REFERENCES train_car_types(id),
		FOREIGN KEY (train_id) REFERENCES trains(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_train_cars_train ON train_cars(train_id);
	`

// initSchema applies the DDL and seed data. Every step is idempotent: tables
// are created if missing, car types are check-then-inserted one by one, and
// seed accounts go in only while the users table is empty. Any failure is
// fatal to startup and is propagated, not retried.
func initSchema(ctx context.Context, db *sql.DB, seeds []SeedAccount) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	log.Debug().Msg("schema verified")

	if err := seedCarTypes(ctx, db); err != nil {
		return fmt.Errorf("seed car types: %w", err)
	}

	if err := seedAccounts(ctx, db, seeds); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	return nil
}

func seedCarTypes(ctx context.Context, db *sql.DB) error {
	for _, kind := range domain.Kinds() {
		var id int64
		err := db.QueryRowContext(ctx, `SELECT id FROM train_car_types WHERE name = ?`, string(kind)).Scan(&id)
		switch {
		case err == nil:
			continue
		case errors.Is(err, sql.ErrNoRows):
			if _, err := db.ExecContext(ctx, `INSERT INTO train_car_types (name) VALUES (?)`, string(kind)); err != nil {
				return fmt.Errorf("insert car type %q: %w", kind, err)
			}
			log.Info().Str("type", string(kind)).Msg("seeded car type")
		default:
			return fmt.Errorf("check car type %q: %w", kind, err)
		}
	}
	return nil
}

func seedAccounts(ctx context.Context, db *sql.DB, seeds []SeedAccount) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Debug().Int("users", count).Msg("users table populated, skipping seed accounts")
		return nil
	}

	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password for %q: %w", seed.Username, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
			seed.Username, string(hash), string(seed.Role)); err != nil {
			return fmt.Errorf("insert seed account %q: %w", seed.Username, err)
		}
		log.Info().Str("username", seed.Username).Str("role", string(seed.Role)).Msg("seeded account")
	}
	return nil
}

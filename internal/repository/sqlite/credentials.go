package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"fleetyard/internal/domain"
	"fleetyard/internal/repository"
)

const (
	insertUserRow        = `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`
	selectUserByUsername = `SELECT id, username, password, role FROM users WHERE username = ?`
)

// CredentialRepository is the SQLite implementation of
// repository.CredentialRepository. Secrets are stored only as bcrypt hashes;
// the salt is embedded in the hash itself.
type CredentialRepository struct {
	conn Connector
}

// NewCredentialRepository creates a credential repository over the given
// store handle.
func NewCredentialRepository(conn Connector) *CredentialRepository {
	return &CredentialRepository{conn: conn}
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)

// Register validates the input, checks username uniqueness (case-sensitive
// exact match) and inserts the new account with a fresh salted hash.
func (r *CredentialRepository) Register(ctx context.Context, username, secret string, role domain.Role) error {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" {
		return domain.Validationf("username cannot be empty")
	}
	if secret == "" {
		return domain.Validationf("password cannot be empty")
	}
	if !role.Valid() {
		return domain.Validationf("unknown role %q", role)
	}

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return &repository.StorageError{Op: "register user " + trimmedUser, Err: err}
	}
	defer db.Close()

	var existingID int64
	err = db.QueryRowContext(ctx, selectUserByUsername, trimmedUser).Scan(&existingID, new(string), new(string), new(string))
	switch {
	case err == nil:
		log.Warn().Str("username", trimmedUser).Msg("registration rejected, username taken")
		return &repository.AlreadyExistsError{Username: trimmedUser}
	case errors.Is(err, sql.ErrNoRows):
		// Free to register.
	default:
		return &repository.StorageError{Op: "register user " + trimmedUser, Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return &repository.StorageError{Op: "register user " + trimmedUser, Err: err}
	}

	if _, err := db.ExecContext(ctx, insertUserRow, trimmedUser, string(hash), string(role)); err != nil {
		return &repository.StorageError{Op: "register user " + trimmedUser, Err: err}
	}
	log.Info().Str("username", trimmedUser).Str("role", string(role)).Msg("user registered")
	return nil
}

// Authenticate looks the username up and verifies the secret against the
// stored hash. Unknown user, wrong secret, and malformed hash all return
// (nil, nil) so the caller cannot tell them apart.
func (r *CredentialRepository) Authenticate(ctx context.Context, username, secret string) (*domain.Credential, error) {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" {
		return nil, domain.Validationf("username cannot be empty")
	}
	if secret == "" {
		return nil, domain.Validationf("password cannot be empty")
	}

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, &repository.StorageError{Op: "authenticate user " + trimmedUser, Err: err}
	}
	defer db.Close()

	var (
		id           int64
		storedUser   string
		storedHash   string
		storedRole   string
	)
	err = db.QueryRowContext(ctx, selectUserByUsername, trimmedUser).Scan(&id, &storedUser, &storedHash, &storedRole)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug().Str("username", trimmedUser).Msg("authentication failed, user unknown")
		return nil, nil
	}
	if err != nil {
		return nil, &repository.StorageError{Op: "authenticate user " + trimmedUser, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Warn().Str("username", storedUser).Msg("stored password hash is malformed")
		}
		log.Debug().Str("username", storedUser).Msg("authentication failed, wrong password")
		return nil, nil
	}

	log.Info().Str("username", storedUser).Str("role", storedRole).Msg("authentication succeeded")
	return &domain.Credential{ID: id, Username: storedUser, Role: domain.Role(storedRole)}, nil
}

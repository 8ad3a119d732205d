package repository

import (
	"context"

	"fleetyard/internal/domain"
)

// TrainRepository defines data access for train aggregates.
//
// Absence is a normal outcome, not an error: Load returns (nil, nil) for an
// unknown number and Delete succeeds as a no-op. Save and Delete are the only
// multi-statement operations and run inside an explicit transaction; partial
// writes are never visible to other readers.
type TrainRepository interface {
	// Load fetches a train with all of its cars. Individually corrupt car
	// rows are logged and skipped so one bad row cannot block access to an
	// otherwise healthy train.
	Load(ctx context.Context, number string) (*domain.Train, error)

	// ListAll returns number-only projections of every train, sorted by
	// number. Rows with an invalid number are skipped individually.
	ListAll(ctx context.Context) ([]*domain.Train, error)

	// Save stores the train as a transactional full replace: the existing
	// car rows are deleted and the currently owned cars inserted. On failure
	// the store is left exactly as before the call; the in-memory train may
	// be stale and should be reloaded.
	Save(ctx context.Context, train *domain.Train) error

	// Delete removes the train row; owned car rows go with it via cascade.
	Delete(ctx context.Context, number string) error

	// UpdateCar rewrites a single car row in place, bypassing the full
	// replace. Prefer Save for whole-train edits.
	UpdateCar(ctx context.Context, carID int64, car *domain.Car) error
}

// CredentialRepository defines registration and authentication against the
// credential store.
type CredentialRepository interface {
	// Register inserts a new account with a salted hash of the secret.
	// Returns *AlreadyExistsError if the username is taken (case-sensitive).
	Register(ctx context.Context, username, secret string, role domain.Role) error

	// Authenticate verifies the secret against the stored hash. It returns
	// (nil, nil) for an unknown username, a wrong secret, or a malformed
	// stored hash — the three cases are indistinguishable to the caller so
	// usernames cannot be enumerated through error types.
	Authenticate(ctx context.Context, username, secret string) (*domain.Credential, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"fleetyard/internal/domain"
	"fleetyard/internal/repository"
)

const (
	selectTrainID   = `SELECT id FROM trains WHERE train_number = ?`
	insertTrainRow  = `INSERT INTO trains (train_number) VALUES (?)`
	selectAllTrains = `SELECT id, train_number FROM trains ORDER BY train_number`
	deleteTrainRow  = `DELETE FROM trains WHERE id = ?`
	deleteTrainCars = `DELETE FROM train_cars WHERE train_id = ?`
	selectTypeID    = `SELECT id FROM train_car_types WHERE name = ?`
	insertCarRow    = `INSERT INTO train_cars (train_id, type_id, capacity, baggage_capacity, comfort_level, additional_info) VALUES (?, ?, ?, ?, ?, ?)`
	updateCarRow    = `UPDATE train_cars SET capacity = ?, baggage_capacity = ?, comfort_level = ?, additional_info = ? WHERE id = ?`
	selectTrainCars = `
		SELECT c.id, c.capacity, c.baggage_capacity, c.comfort_level, c.additional_info, t.name
		FROM train_cars c JOIN train_car_types t ON c.type_id = t.id
		WHERE c.train_id = ?
		ORDER BY c.id`
)

// TrainRepository is the SQLite implementation of repository.TrainRepository.
type TrainRepository struct {
	conn Connector
}

// NewTrainRepository creates a train repository over the given store handle.
func NewTrainRepository(conn Connector) *TrainRepository {
	return &TrainRepository{conn: conn}
}

var _ repository.TrainRepository = (*TrainRepository)(nil)

// Load fetches the train and its cars, or (nil, nil) if the number is
// unknown. A car row that cannot be reconstructed (unknown type, unparsable
// payload) is logged and skipped; the rest of the train still loads.
func (r *TrainRepository) Load(ctx context.Context, number string) (*domain.Train, error) {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return nil, domain.Validationf("train number to load cannot be empty")
	}

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, &repository.StorageError{Op: "load train " + trimmed, Err: err}
	}
	defer db.Close()

	id, found, err := trainID(ctx, db, trimmed)
	if err != nil {
		return nil, &repository.StorageError{Op: "load train " + trimmed, Err: err}
	}
	if !found {
		log.Debug().Str("train", trimmed).Msg("train not found")
		return nil, nil
	}

	train, err := domain.NewTrain(trimmed)
	if err != nil {
		// The number passed validation above; a failure here means the
		// stored row itself is inconsistent.
		return nil, &repository.StorageError{Op: "load train " + trimmed, Err: err}
	}

	rows, err := db.QueryContext(ctx, selectTrainCars, id)
	if err != nil {
		return nil, &repository.StorageError{Op: "load cars for train " + trimmed, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			carID             int64
			capacity, comfort int
			baggage           float64
			info              sql.NullString
			typeName          string
		)
		if err := rows.Scan(&carID, &capacity, &baggage, &comfort, &info, &typeName); err != nil {
			return nil, &repository.StorageError{Op: "load cars for train " + trimmed, Err: err}
		}

		car, err := carFromRow(typeName, capacity, baggage, comfort, info)
		if err != nil {
			log.Warn().Err(err).Int64("car_id", carID).Str("train", trimmed).
				Msg("skipping corrupt car row")
			continue
		}
		car.SetID(carID)
		if err := train.AddCar(car); err != nil {
			log.Warn().Err(err).Int64("car_id", carID).Str("train", trimmed).
				Msg("skipping car rejected by train")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &repository.StorageError{Op: "load cars for train " + trimmed, Err: err}
	}

	log.Debug().Str("train", trimmed).Int("cars", train.Len()).Msg("train loaded")
	return train, nil
}

// ListAll returns number-only projections sorted by number. Rows with an
// invalid number are skipped individually rather than failing the listing.
func (r *TrainRepository) ListAll(ctx context.Context) ([]*domain.Train, error) {
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, &repository.StorageError{Op: "list trains", Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectAllTrains)
	if err != nil {
		return nil, &repository.StorageError{Op: "list trains", Err: err}
	}
	defer rows.Close()

	var trains []*domain.Train
	for rows.Next() {
		var (
			id     int64
			number string
		)
		if err := rows.Scan(&id, &number); err != nil {
			return nil, &repository.StorageError{Op: "list trains", Err: err}
		}
		train, err := domain.NewTrain(number)
		if err != nil {
			log.Warn().Err(err).Int64("train_id", id).Str("number", number).
				Msg("skipping train row with invalid number")
			continue
		}
		trains = append(trains, train)
	}
	if err := rows.Err(); err != nil {
		return nil, &repository.StorageError{Op: "list trains", Err: err}
	}
	return trains, nil
}

// Save stores the whole train in one transaction: resolve or insert the train
// row, drop any existing car rows, insert the currently owned cars. Any
// failure rolls the transaction back, leaving the store untouched.
func (r *TrainRepository) Save(ctx context.Context, train *domain.Train) error {
	if train == nil {
		return domain.Validationf("cannot save a nil train")
	}
	number := train.Number()

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return &repository.StorageError{Op: "save train " + number, Err: err}
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &repository.StorageError{Op: "save train " + number, Err: err}
	}
	defer tx.Rollback()

	id, found, err := trainID(ctx, tx, number)
	if err != nil {
		return &repository.StorageError{Op: "save train " + number, Err: err}
	}
	if !found {
		res, err := tx.ExecContext(ctx, insertTrainRow, number)
		if err != nil {
			return &repository.StorageError{Op: "save train " + number, Err: err}
		}
		id, err = res.LastInsertId()
		if err != nil {
			return &repository.StorageError{Op: "save train " + number, Err: err}
		}
		log.Debug().Str("train", number).Int64("train_id", id).Msg("inserted new train row")
	} else {
		if _, err := tx.ExecContext(ctx, deleteTrainCars, id); err != nil {
			return &repository.StorageError{Op: "save train " + number, Err: err}
		}
		log.Debug().Str("train", number).Int64("train_id", id).Msg("replacing cars of existing train")
	}

	for _, car := range train.Cars() {
		typeID, err := carTypeID(ctx, tx, car.Kind())
		if err != nil {
			return &repository.StorageError{Op: "save train " + number, Err: err}
		}
		if _, err := tx.ExecContext(ctx, insertCarRow,
			id, typeID, car.Capacity(), car.BaggageCapacity(), car.ComfortLevel(), additionalInfo(car)); err != nil {
			return &repository.StorageError{Op: "save train " + number, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &repository.StorageError{Op: "save train " + number, Err: err}
	}
	log.Info().Str("train", number).Int("cars", train.Len()).Msg("train saved")
	return nil
}

// Delete removes the train row inside a transaction; car rows go via cascade.
// Deleting an unknown number succeeds as a no-op.
func (r *TrainRepository) Delete(ctx context.Context, number string) error {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return domain.Validationf("train number to delete cannot be empty")
	}

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return &repository.StorageError{Op: "delete train " + trimmed, Err: err}
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &repository.StorageError{Op: "delete train " + trimmed, Err: err}
	}
	defer tx.Rollback()

	id, found, err := trainID(ctx, tx, trimmed)
	if err != nil {
		return &repository.StorageError{Op: "delete train " + trimmed, Err: err}
	}
	if !found {
		log.Debug().Str("train", trimmed).Msg("train not found for deletion, no-op")
		return nil
	}

	if _, err := tx.ExecContext(ctx, deleteTrainRow, id); err != nil {
		return &repository.StorageError{Op: "delete train " + trimmed, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &repository.StorageError{Op: "delete train " + trimmed, Err: err}
	}
	log.Info().Str("train", trimmed).Int64("train_id", id).Msg("train deleted, cars removed via cascade")
	return nil
}

// UpdateCar rewrites one car row in place. Whole-train edits should go
// through Save instead.
func (r *TrainRepository) UpdateCar(ctx context.Context, carID int64, car *domain.Car) error {
	if car == nil {
		return domain.Validationf("cannot update a car row with nil data")
	}

	db, err := r.conn.Connect(ctx)
	if err != nil {
		return &repository.StorageError{Op: fmt.Sprintf("update car %d", carID), Err: err}
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, updateCarRow,
		car.Capacity(), car.BaggageCapacity(), car.ComfortLevel(), additionalInfo(car), carID)
	if err != nil {
		return &repository.StorageError{Op: fmt.Sprintf("update car %d", carID), Err: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		log.Debug().Int64("car_id", carID).Msg("no car row matched for update")
	}
	return nil
}

func trainID(ctx context.Context, q querier, number string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, selectTrainID, number).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func carTypeID(ctx context.Context, q querier, kind domain.Kind) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, selectTypeID, string(kind)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("car type %q not present in type catalogue", kind)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fleetyard/internal/domain"
	"fleetyard/internal/storage"
)

func newTestStore(t *testing.T) *storage.Server {
	t.Helper()
	srv := storage.NewServer(storage.Options{
		Path: filepath.Join(t.TempDir(), "fleet.db"),
		SeedAccounts: []storage.SeedAccount{
			{Username: "admin", Password: "admin123", Role: domain.RoleAdmin},
		},
	})
	if err := srv.EnsureStarted(context.Background()); err != nil {
		t.Fatalf("start store: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func mustTrain(t *testing.T, number string, cars ...*domain.Car) *domain.Train {
	t.Helper()
	train, err := domain.NewTrain(number)
	if err != nil {
		t.Fatalf("new train: %v", err)
	}
	for _, c := range cars {
		if err := train.AddCar(c); err != nil {
			t.Fatalf("add car: %v", err)
		}
	}
	return train
}

func mustCar(t *testing.T) func(*domain.Car, error) *domain.Car {
	t.Helper()
	return func(car *domain.Car, err error) *domain.Car {
		t.Helper()
		if err != nil {
			t.Fatalf("build car: %v", err)
		}
		return car
	}
}

// execDirect runs raw SQL against the store, bypassing the repository.
func execDirect(t *testing.T, srv *storage.Server, query string, args ...any) {
	t.Helper()
	conn, err := srv.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func queryInt(t *testing.T, srv *storage.Server, query string, args ...any) int {
	t.Helper()
	conn, err := srv.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestTrainRoundTrip(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	passenger := mustCar(t)(domain.NewPassengerCar(40, 5.0, 2, "Купе"))
	loco := mustCar(t)(domain.NewLocomotive(0, 0.0, 0, 120))
	train := mustTrain(t, "T1", passenger, loco)

	if err := repo.Save(ctx, train); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx, "T1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected train, got nil")
	}
	if loaded.Number() != "T1" {
		t.Errorf("expected number T1, got %q", loaded.Number())
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 cars, got %d", loaded.Len())
	}
	if got := loaded.TotalPassengerCapacity(); got != 40 {
		t.Errorf("expected total passenger capacity 40, got %d", got)
	}
	if got := loaded.TotalBaggageCapacity(); got != 5.0 {
		t.Errorf("expected total baggage capacity 5.0, got %g", got)
	}

	var gotPassenger, gotLoco *domain.Car
	for _, c := range loaded.Cars() {
		switch c.Kind() {
		case domain.KindPassengerCar:
			gotPassenger = c
		case domain.KindLocomotive:
			gotLoco = c
		}
	}
	if gotPassenger == nil || gotLoco == nil {
		t.Fatalf("expected one passenger car and one locomotive, got %v", loaded.Cars())
	}
	if gotPassenger.PassengerType() != "Купе" || gotPassenger.Capacity() != 40 ||
		gotPassenger.BaggageCapacity() != 5.0 || gotPassenger.ComfortLevel() != 2 {
		t.Errorf("passenger car fields did not round-trip: %v", gotPassenger)
	}
	if gotLoco.TractionForce() != 120 {
		t.Errorf("expected traction force 120, got %d", gotLoco.TractionForce())
	}
	if gotPassenger.ID() == 0 || gotLoco.ID() == 0 {
		t.Error("expected loaded cars to carry their row ids")
	}
}

func TestFloatPayloadRoundTrip(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	baggage := mustCar(t)(domain.NewBaggageCar(0, 80.5, 0, 2500.75))
	if err := repo.Save(ctx, mustTrain(t, "B1", baggage)); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx, "B1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	car, err := loaded.CarAt(0)
	if err != nil {
		t.Fatalf("car at 0: %v", err)
	}
	if car.MaxWeight() != 2500.75 {
		t.Errorf("expected max weight 2500.75, got %v", car.MaxWeight())
	}
	if car.BaggageCapacity() != 80.5 {
		t.Errorf("expected baggage capacity 80.5, got %v", car.BaggageCapacity())
	}
}

func TestLoadUnknownTrain(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)

	train, err := repo.Load(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if train != nil {
		t.Fatalf("expected nil for unknown train, got %v", train)
	}
}

func TestLoadValidation(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)

	var verr *domain.ValidationError
	if _, err := repo.Load(context.Background(), "   "); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := repo.Save(context.Background(), nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for nil train, got %v", err)
	}
}

func TestSaveReplacesExistingCars(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	train := mustTrain(t, "T2",
		mustCar(t)(domain.NewPassengerCar(30, 2.0, 1, "Плацкарт")),
		mustCar(t)(domain.NewRestaurantCar(0, 1.0, 3, 8)),
	)
	if err := repo.Save(ctx, train); err != nil {
		t.Fatalf("first save: %v", err)
	}

	if err := train.RemoveCar(1); err != nil {
		t.Fatalf("remove car: %v", err)
	}
	if err := repo.Save(ctx, train); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.Load(ctx, "T2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 car after replace, got %d", loaded.Len())
	}
	if got := queryInt(t, srv, `SELECT COUNT(*) FROM train_cars`); got != 1 {
		t.Errorf("expected exactly 1 car row in store, got %d", got)
	}
}

func TestDeleteCascades(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	train := mustTrain(t, "T3",
		mustCar(t)(domain.NewPassengerCar(30, 2.0, 1, "Купе")),
		mustCar(t)(domain.NewLocomotive(0, 0, 0, 90)),
	)
	if err := repo.Save(ctx, train); err != nil {
		t.Fatalf("save: %v", err)
	}

	trainRowID := queryInt(t, srv, `SELECT id FROM trains WHERE train_number = ?`, "T3")

	if err := repo.Delete(ctx, "T3"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	loaded, err := repo.Load(ctx, "T3")
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil after delete")
	}
	if got := queryInt(t, srv, `SELECT COUNT(*) FROM train_cars WHERE train_id = ?`, trainRowID); got != 0 {
		t.Errorf("expected 0 car rows after cascade, got %d", got)
	}
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)

	if err := repo.Delete(context.Background(), "GHOST"); err != nil {
		t.Fatalf("deleting an unknown train must succeed: %v", err)
	}
}

func TestListAllSortedAndSkipsInvalid(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	if err := repo.Save(ctx, mustTrain(t, "B2")); err != nil {
		t.Fatalf("save B2: %v", err)
	}
	if err := repo.Save(ctx, mustTrain(t, "A1")); err != nil {
		t.Fatalf("save A1: %v", err)
	}
	// A row that passes the store's NOT NULL check but fails domain
	// validation: whitespace-only number.
	execDirect(t, srv, `INSERT INTO trains (train_number) VALUES (' ')`)

	trains, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trains) != 2 {
		t.Fatalf("expected 2 valid trains, got %d", len(trains))
	}
	if trains[0].Number() != "A1" || trains[1].Number() != "B2" {
		t.Errorf("expected [A1 B2], got [%s %s]", trains[0].Number(), trains[1].Number())
	}
}

func TestLoadSkipsCorruptCarRows(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	good := mustCar(t)(domain.NewPassengerCar(40, 5.0, 2, "Купе"))
	if err := repo.Save(ctx, mustTrain(t, "T4", good)); err != nil {
		t.Fatalf("save: %v", err)
	}
	trainRowID := queryInt(t, srv, `SELECT id FROM trains WHERE train_number = ?`, "T4")

	// A car of a type outside the closed variant set.
	execDirect(t, srv, `INSERT INTO train_car_types (name) VALUES ('MailCar')`)
	mailTypeID := queryInt(t, srv, `SELECT id FROM train_car_types WHERE name = 'MailCar'`)
	execDirect(t, srv,
		`INSERT INTO train_cars (train_id, type_id, capacity, baggage_capacity, comfort_level, additional_info) VALUES (?, ?, 0, 0, 0, '')`,
		trainRowID, mailTypeID)

	// A restaurant car whose payload cannot be parsed as a table count.
	restTypeID := queryInt(t, srv, `SELECT id FROM train_car_types WHERE name = ?`, string(domain.KindRestaurantCar))
	execDirect(t, srv,
		`INSERT INTO train_cars (train_id, type_id, capacity, baggage_capacity, comfort_level, additional_info) VALUES (?, ?, 0, 0, 0, 'twelve')`,
		trainRowID, restTypeID)

	loaded, err := repo.Load(ctx, "T4")
	if err != nil {
		t.Fatalf("load must not fail on corrupt rows: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected corrupt rows skipped, got %d cars", loaded.Len())
	}
	car, _ := loaded.CarAt(0)
	if car.Kind() != domain.KindPassengerCar {
		t.Errorf("expected the healthy passenger car to survive, got %s", car.Kind())
	}
}

func TestUpdateCar(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	car := mustCar(t)(domain.NewRestaurantCar(0, 1.0, 2, 8))
	if err := repo.Save(ctx, mustTrain(t, "T5", car)); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx, "T5")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stored, _ := loaded.CarAt(0)

	if err := stored.SetTables(12); err != nil {
		t.Fatalf("set tables: %v", err)
	}
	if err := stored.SetComfortLevel(4); err != nil {
		t.Fatalf("set comfort: %v", err)
	}
	if err := repo.UpdateCar(ctx, stored.ID(), stored); err != nil {
		t.Fatalf("update car: %v", err)
	}

	reloaded, err := repo.Load(ctx, "T5")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	updated, _ := reloaded.CarAt(0)
	if updated.Tables() != 12 || updated.ComfortLevel() != 4 {
		t.Errorf("expected updated row (tables=12 comfort=4), got tables=%d comfort=%d",
			updated.Tables(), updated.ComfortLevel())
	}

	t.Run("nil car is rejected", func(t *testing.T) {
		var verr *domain.ValidationError
		if err := repo.UpdateCar(ctx, stored.ID(), nil); !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestTrainsSurviveStoreRestart(t *testing.T) {
	srv := newTestStore(t)
	repo := NewTrainRepository(srv)
	ctx := context.Background()

	if err := repo.Save(ctx, mustTrain(t, "T6", mustCar(t)(domain.NewLocomotive(0, 0, 0, 150)))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := srv.EnsureStarted(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	loaded, err := repo.Load(ctx, "T6")
	if err != nil {
		t.Fatalf("load after restart: %v", err)
	}
	if loaded == nil || loaded.Len() != 1 {
		t.Fatal("expected train to survive a store restart")
	}
}

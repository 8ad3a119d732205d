package domain

import (
	"sort"
	"strings"
)

// Train is the aggregate root: a unique train number and the ordered sequence
// of cars it owns. The order of the car list reflects the physical sequence.
type Train struct {
	number string
	cars   []*Car
}

// NewTrain creates an empty train. The number is trimmed and must be
// non-empty; it cannot change after construction.
func NewTrain(number string) (*Train, error) {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return nil, Validationf("train number cannot be empty")
	}
	return &Train{number: trimmed}, nil
}

// Number returns the unique train number.
func (t *Train) Number() string { return t.number }

// Len returns the number of cars in the train.
func (t *Train) Len() int { return len(t.cars) }

// AddCar appends a car to the end of the train.
func (t *Train) AddCar(c *Car) error {
	if c == nil {
		return Validationf("cannot add a nil car to train %q", t.number)
	}
	t.cars = append(t.cars, c)
	return nil
}

// RemoveCar removes the car at the given position.
func (t *Train) RemoveCar(index int) error {
	if index < 0 || index >= len(t.cars) {
		return &IndexError{Index: index, Size: len(t.cars)}
	}
	t.cars = append(t.cars[:index], t.cars[index+1:]...)
	return nil
}

// CarAt returns the car at the given position.
func (t *Train) CarAt(index int) (*Car, error) {
	if index < 0 || index >= len(t.cars) {
		return nil, &IndexError{Index: index, Size: len(t.cars)}
	}
	return t.cars[index], nil
}

// Cars returns a defensive copy of the car list. Mutating the returned slice
// does not affect the train.
func (t *Train) Cars() []*Car {
	out := make([]*Car, len(t.cars))
	copy(out, t.cars)
	return out
}

// TotalPassengerCapacity sums the passenger capacity of every car.
func (t *Train) TotalPassengerCapacity() int {
	total := 0
	for _, c := range t.cars {
		total += c.Capacity()
	}
	return total
}

// TotalBaggageCapacity sums the baggage capacity of every car.
func (t *Train) TotalBaggageCapacity() float64 {
	total := 0.0
	for _, c := range t.cars {
		total += c.BaggageCapacity()
	}
	return total
}

// CarsByComfortRange returns the cars whose comfort level lies in
// [minComfort, maxComfort], preserving train order.
func (t *Train) CarsByComfortRange(minComfort, maxComfort int) ([]*Car, error) {
	if minComfort > maxComfort {
		return nil, Validationf("minimum comfort level %d cannot exceed maximum %d", minComfort, maxComfort)
	}
	var found []*Car
	for _, c := range t.cars {
		if c.ComfortLevel() >= minComfort && c.ComfortLevel() <= maxComfort {
			found = append(found, c)
		}
	}
	return found, nil
}

// SortCars reorders the train's own car list in place. A nil less function is
// ignored.
func (t *Train) SortCars(less func(a, b *Car) bool) {
	if less == nil {
		return
	}
	sort.SliceStable(t.cars, func(i, j int) bool { return less(t.cars[i], t.cars[j]) })
}

func (t *Train) String() string {
	return "Train{number=" + t.number + "}"
}

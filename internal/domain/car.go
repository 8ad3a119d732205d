package domain

import (
	"fmt"
	"strings"
)

// Kind discriminates the closed set of rolling-stock variants. The values
// double as the names stored in the type catalogue table.
type Kind string

const (
	KindPassengerCar  Kind = "PassengerCar"
	KindRestaurantCar Kind = "RestaurantCar"
	KindBaggageCar    Kind = "BaggageCar"
	KindLocomotive    Kind = "Locomotive"
)

// Kinds returns every valid discriminator, in catalogue seeding order.
func Kinds() []Kind {
	return []Kind{KindPassengerCar, KindRestaurantCar, KindBaggageCar, KindLocomotive}
}

// Valid reports whether k is one of the known discriminators.
func (k Kind) Valid() bool {
	switch k {
	case KindPassengerCar, KindRestaurantCar, KindBaggageCar, KindLocomotive:
		return true
	}
	return false
}

// Car is a single rolling-stock unit. The Kind field selects which of the
// variant payload fields is meaningful; the common fields apply to every kind.
//
// The id is zero until the car is first persisted; after that it is owned by
// the repository and should not be assigned by anyone else.
type Car struct {
	id              int64
	capacity        int
	baggageCapacity float64
	comfortLevel    int

	kind Kind

	// Variant payload; exactly one field is meaningful per kind.
	passengerType string
	tables        int
	maxWeight     float64
	tractionForce int
}

func validateCommon(capacity int, baggageCapacity float64, comfortLevel int) error {
	if capacity < 0 {
		return Validationf("passenger capacity cannot be negative: %d", capacity)
	}
	if baggageCapacity < 0 {
		return Validationf("baggage capacity cannot be negative: %g", baggageCapacity)
	}
	if comfortLevel < 0 {
		return Validationf("comfort level cannot be negative: %d", comfortLevel)
	}
	return nil
}

// NewPassengerCar builds a passenger car. The subtype label (e.g. "Купе")
// must be non-empty; it is stored trimmed.
func NewPassengerCar(capacity int, baggageCapacity float64, comfortLevel int, passengerType string) (*Car, error) {
	if err := validateCommon(capacity, baggageCapacity, comfortLevel); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(passengerType)
	if trimmed == "" {
		return nil, Validationf("passenger car subtype cannot be empty")
	}
	return &Car{
		capacity:        capacity,
		baggageCapacity: baggageCapacity,
		comfortLevel:    comfortLevel,
		kind:            KindPassengerCar,
		passengerType:   trimmed,
	}, nil
}

// NewRestaurantCar builds a restaurant car with the given table count.
func NewRestaurantCar(capacity int, baggageCapacity float64, comfortLevel int, tables int) (*Car, error) {
	if err := validateCommon(capacity, baggageCapacity, comfortLevel); err != nil {
		return nil, err
	}
	if tables < 0 {
		return nil, Validationf("table count cannot be negative: %d", tables)
	}
	return &Car{
		capacity:        capacity,
		baggageCapacity: baggageCapacity,
		comfortLevel:    comfortLevel,
		kind:            KindRestaurantCar,
		tables:          tables,
	}, nil
}

// NewBaggageCar builds a baggage car with the given maximum cargo weight.
func NewBaggageCar(capacity int, baggageCapacity float64, comfortLevel int, maxWeight float64) (*Car, error) {
	if err := validateCommon(capacity, baggageCapacity, comfortLevel); err != nil {
		return nil, err
	}
	if maxWeight < 0 {
		return nil, Validationf("max weight capacity cannot be negative: %g", maxWeight)
	}
	return &Car{
		capacity:        capacity,
		baggageCapacity: baggageCapacity,
		comfortLevel:    comfortLevel,
		kind:            KindBaggageCar,
		maxWeight:       maxWeight,
	}, nil
}

// NewLocomotive builds a locomotive with the given traction force.
func NewLocomotive(capacity int, baggageCapacity float64, comfortLevel int, tractionForce int) (*Car, error) {
	if err := validateCommon(capacity, baggageCapacity, comfortLevel); err != nil {
		return nil, err
	}
	if tractionForce < 0 {
		return nil, Validationf("traction force cannot be negative: %d", tractionForce)
	}
	return &Car{
		capacity:        capacity,
		baggageCapacity: baggageCapacity,
		comfortLevel:    comfortLevel,
		kind:            KindLocomotive,
		tractionForce:   tractionForce,
	}, nil
}

// ID returns the database id, or zero if the car has never been persisted.
func (c *Car) ID() int64 { return c.id }

// SetID assigns the database id. Only the repository should call this.
func (c *Car) SetID(id int64) { c.id = id }

// Kind returns the bare discriminator.
func (c *Car) Kind() Kind { return c.kind }

// Type returns the display type: the discriminator, combined with the subtype
// label for passenger cars ("PassengerCar - Купе").
func (c *Car) Type() string {
	if c.kind == KindPassengerCar {
		return fmt.Sprintf("%s - %s", c.kind, c.passengerType)
	}
	return string(c.kind)
}

func (c *Car) Capacity() int            { return c.capacity }
func (c *Car) BaggageCapacity() float64 { return c.baggageCapacity }
func (c *Car) ComfortLevel() int        { return c.comfortLevel }

// PassengerType returns the subtype label; empty for non-passenger cars.
func (c *Car) PassengerType() string { return c.passengerType }

// Tables returns the table count; zero for non-restaurant cars.
func (c *Car) Tables() int { return c.tables }

// MaxWeight returns the cargo weight limit; zero for non-baggage cars.
func (c *Car) MaxWeight() float64 { return c.maxWeight }

// TractionForce returns the traction force; zero for non-locomotives.
func (c *Car) TractionForce() int { return c.tractionForce }

// SetCapacity replaces the passenger capacity. Setting the current value is a
// valid no-op; negative values fail validation.
func (c *Car) SetCapacity(capacity int) error {
	if capacity < 0 {
		return Validationf("passenger capacity cannot be negative: %d", capacity)
	}
	c.capacity = capacity
	return nil
}

// SetBaggageCapacity replaces the baggage capacity.
func (c *Car) SetBaggageCapacity(baggageCapacity float64) error {
	if baggageCapacity < 0 {
		return Validationf("baggage capacity cannot be negative: %g", baggageCapacity)
	}
	c.baggageCapacity = baggageCapacity
	return nil
}

// SetComfortLevel replaces the comfort level.
func (c *Car) SetComfortLevel(comfortLevel int) error {
	if comfortLevel < 0 {
		return Validationf("comfort level cannot be negative: %d", comfortLevel)
	}
	c.comfortLevel = comfortLevel
	return nil
}

// SetPassengerType replaces the subtype label of a passenger car.
func (c *Car) SetPassengerType(passengerType string) error {
	if c.kind != KindPassengerCar {
		return Validationf("cannot set passenger subtype on a %s", c.kind)
	}
	trimmed := strings.TrimSpace(passengerType)
	if trimmed == "" {
		return Validationf("passenger car subtype cannot be empty")
	}
	c.passengerType = trimmed
	return nil
}

// SetTables replaces the table count of a restaurant car.
func (c *Car) SetTables(tables int) error {
	if c.kind != KindRestaurantCar {
		return Validationf("cannot set table count on a %s", c.kind)
	}
	if tables < 0 {
		return Validationf("table count cannot be negative: %d", tables)
	}
	c.tables = tables
	return nil
}

// SetMaxWeight replaces the cargo weight limit of a baggage car.
func (c *Car) SetMaxWeight(maxWeight float64) error {
	if c.kind != KindBaggageCar {
		return Validationf("cannot set max weight on a %s", c.kind)
	}
	if maxWeight < 0 {
		return Validationf("max weight capacity cannot be negative: %g", maxWeight)
	}
	c.maxWeight = maxWeight
	return nil
}

// SetTractionForce replaces the traction force of a locomotive.
func (c *Car) SetTractionForce(tractionForce int) error {
	if c.kind != KindLocomotive {
		return Validationf("cannot set traction force on a %s", c.kind)
	}
	if tractionForce < 0 {
		return Validationf("traction force cannot be negative: %d", tractionForce)
	}
	c.tractionForce = tractionForce
	return nil
}

func (c *Car) String() string {
	return fmt.Sprintf("Type: %s, Capacity: %d, Baggage: %.1f, Comfort: %d, ID: %d",
		c.Type(), c.capacity, c.baggageCapacity, c.comfortLevel, c.id)
}

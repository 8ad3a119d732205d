package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"

	"fleetyard/internal/domain"
)

// carFromRow reconstructs a domain car from a joined car row. The type name
// comes from the type catalogue; the additional_info payload is parsed per
// kind (free text, table count, max weight, traction force).
func carFromRow(typeName string, capacity int, baggage float64, comfort int, info sql.NullString) (*domain.Car, error) {
	payload := ""
	if info.Valid {
		payload = info.String
	}

	switch domain.Kind(typeName) {
	case domain.KindPassengerCar:
		return domain.NewPassengerCar(capacity, baggage, comfort, payload)
	case domain.KindRestaurantCar:
		tables, err := parseIntPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("restaurant car payload %q: %w", payload, err)
		}
		return domain.NewRestaurantCar(capacity, baggage, comfort, tables)
	case domain.KindBaggageCar:
		maxWeight, err := parseFloatPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("baggage car payload %q: %w", payload, err)
		}
		return domain.NewBaggageCar(capacity, baggage, comfort, maxWeight)
	case domain.KindLocomotive:
		traction, err := parseIntPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("locomotive payload %q: %w", payload, err)
		}
		return domain.NewLocomotive(capacity, baggage, comfort, traction)
	default:
		return nil, fmt.Errorf("unknown car type %q", typeName)
	}
}

// additionalInfo serializes the variant payload as the text stored in the
// additional_info column.
func additionalInfo(car *domain.Car) string {
	switch car.Kind() {
	case domain.KindPassengerCar:
		return car.PassengerType()
	case domain.KindRestaurantCar:
		return strconv.Itoa(car.Tables())
	case domain.KindBaggageCar:
		return strconv.FormatFloat(car.MaxWeight(), 'g', -1, 64)
	case domain.KindLocomotive:
		return strconv.Itoa(car.TractionForce())
	}
	return ""
}

// An empty payload decodes as zero, matching rows written before the field
// was populated.
func parseIntPayload(payload string) (int, error) {
	if payload == "" {
		return 0, nil
	}
	return strconv.Atoi(payload)
}

func parseFloatPayload(payload string) (float64, error) {
	if payload == "" {
		return 0, nil
	}
	return strconv.ParseFloat(payload, 64)
}

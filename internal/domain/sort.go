package domain

import "sort"

// SortCarsByCapacity returns a new slice sorted by passenger capacity,
// ascending. The input slice is not modified.
func SortCarsByCapacity(cars []*Car) []*Car {
	return sortedCopy(cars, func(a, b *Car) bool { return a.Capacity() < b.Capacity() })
}

// SortCarsByComfortLevel returns a new slice sorted by comfort level,
// ascending. The input slice is not modified.
func SortCarsByComfortLevel(cars []*Car) []*Car {
	return sortedCopy(cars, func(a, b *Car) bool { return a.ComfortLevel() < b.ComfortLevel() })
}

// SortCarsByBaggageCapacity returns a new slice sorted by baggage capacity,
// ascending. The input slice is not modified.
func SortCarsByBaggageCapacity(cars []*Car) []*Car {
	return sortedCopy(cars, func(a, b *Car) bool { return a.BaggageCapacity() < b.BaggageCapacity() })
}

func sortedCopy(cars []*Car, less func(a, b *Car) bool) []*Car {
	out := make([]*Car, len(cars))
	copy(out, cars)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Package domain defines the core domain types for the fleet registry.
//
// # Rolling Stock
//
// Car is the single rolling-stock type. Instead of a subclass hierarchy it is
// a tagged union: a Kind discriminator from a closed set (passenger car,
// restaurant car, baggage car, locomotive) plus one variant-specific payload
// field. Mapping code dispatches on Kind rather than on dynamic type.
//
// # Train
//
// Train is the aggregate: a unique, immutable train number and an ordered list
// of cars that the train owns exclusively. Cars() always returns a defensive
// copy so callers can never mutate the internal list through a returned view.
//
// # Invariants
//
// All numeric car attributes are non-negative at all times; constructors and
// setters enforce this and return *ValidationError on violation. A passenger
// car's subtype label is never empty.
//
// # Design Principles
//
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Totals are recomputed on demand, never cached
package domain

// Package repository defines the data access interfaces for the fleet
// registry. The SQLite implementation lives in the sqlite subpackage.
//
// # Connections
//
// Repository operations are independently short-lived: each opens its own
// connection from the storage server, does its work, and closes it. No
// connection is held across calls.
//
// # Error Taxonomy
//
// Bad input surfaces as *domain.ValidationError, uniqueness conflicts as
// *AlreadyExistsError, and driver failures as *StorageError with operation
// context. Absence is reported as a nil value with a nil error.
package repository

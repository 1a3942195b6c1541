package db

import (
	"fmt"

	"cmdapi/model"
)

// Store owns the collection of commands. Lookups report absence through the
// boolean result; a non-nil error always means the backing substrate failed.
//
// Implementations must be safe for concurrent use: no reader may observe a
// partially applied Create, Update or Remove.
type Store interface {
	// List returns every command in insertion order. It never returns nil
	// on success.
	List() ([]model.Command, error)
	Get(id int64) (model.Command, bool, error)
	// Create stores c under a fresh id and returns the stored command.
	// c.ID is ignored. Ids are never reused, even after Remove.
	Create(c model.Command) (model.Command, error)
	// Update replaces the text fields of command id. It reports false and
	// changes nothing when id does not exist.
	Update(id int64, c model.Command) (bool, error)
	// Remove deletes command id and returns its prior state.
	Remove(id int64) (model.Command, bool, error)
	Count() (int, error)
	Close() error
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// OpenDriver returns the store named by driver. path is only used by the
// SQLite driver.
func OpenDriver(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return Open(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

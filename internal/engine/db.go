// Package engine is the embedder-facing entry point: a DB ties named
// tables together and supplies the cross-table name resolution that
// reference columns and dereference expressions need.
package engine

import (
	"sync"

	"grnxx/internal/errors"
	"grnxx/internal/expr"
	"grnxx/internal/store"
	"grnxx/internal/value"
)

// DB is a registry of Tables, keyed by name. It has no storage of its
// own beyond that registry; all data lives in the Tables it holds.
type DB struct {
	mu     sync.RWMutex
	tables map[string]*store.Table
	order  []string
}

// New returns an empty DB.
func New() *DB {
	return &DB{tables: make(map[string]*store.Table)}
}

// CreateTable creates and registers a new, empty table. It fails
// ALREADY_EXISTS if a table of that name is already registered.
func (db *DB) CreateTable(name string) (*store.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[name]; ok {
		return nil, errors.New(errors.AlreadyExists, "table %q already exists", name).WithName(name)
	}
	t := store.New(name)
	db.tables[name] = t
	db.order = append(db.order, name)
	return t, nil
}

// Table looks up a registered table by name.
func (db *DB) Table(name string) (*store.Table, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[name]
	return t, ok
}

// TableNames lists registered table names in creation order.
func (db *DB) TableNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

// RemoveTable drops a table. It fails NOT_REMOVABLE if any other table
// holds a reference column pointing into it, matching the per-column
// NOT_REMOVABLE rule store.Table.RemoveColumn enforces for key columns.
func (db *DB) RemoveTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tables[name]
	if !ok {
		return errors.New(errors.NotFound, "table %q does not exist", name).WithName(name)
	}
	if refs := t.ReferrerColumns(); len(refs) > 0 {
		return errors.New(errors.NotRemovable, "table %q is referenced by %d column(s)", name, len(refs)).WithName(name)
	}
	delete(db.tables, name)
	for i, n := range db.order {
		if n == name {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
	return nil
}

// Resolve implements expr.Resolver and the resolve callback
// store.Table.RemoveRow needs to clear reference columns in other
// tables, both keyed on the same table-name registry.
func (db *DB) Resolve(name string) (*store.Table, bool) {
	return db.Table(name)
}

// RemoveRow removes a row from the named table, propagating the
// removal to any table whose reference column points at it.
func (db *DB) RemoveRow(tableName string, rowID value.Int) error {
	t, ok := db.Table(tableName)
	if !ok {
		return errors.New(errors.NotFound, "table %q does not exist", tableName).WithName(tableName)
	}
	return t.RemoveRow(rowID, db.Resolve)
}

// NewExpressionBuilder starts an expr.Builder rooted at the named
// table, wired to this DB's table registry for dereference resolution.
func (db *DB) NewExpressionBuilder(tableName string) (*expr.Builder, error) {
	t, ok := db.Table(tableName)
	if !ok {
		return nil, errors.New(errors.NotFound, "table %q does not exist", tableName).WithName(tableName)
	}
	return expr.NewBuilder(t, db.Resolve), nil
}

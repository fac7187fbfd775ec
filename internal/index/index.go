// Package index implements the two concrete index variants over table
// columns: an ordered tree index (backed by google/btree) supporting
// range, prefix, and longest-prefix-match cursors, and an unordered hash
// index (backed by xxhash/blake2b) supporting point lookups only.
package index

import "grnxx/internal/value"

// Kind distinguishes the two concrete index variants.
type Kind uint8

const (
	Tree Kind = iota
	Hash
)

func (k Kind) String() string {
	if k == Tree {
		return "tree"
	}
	return "hash"
}

// Index is the capability surface shared by both variants. Range,
// prefix, and longest-prefix cursors are not part of it: they are
// methods of the tree variant only, and the hash variant has none.
type Index interface {
	Kind() Kind
	ValueType() value.DataType

	Insert(rowID value.Int, key value.Datum) error
	Remove(rowID value.Int, key value.Datum) error

	Contains(key value.Datum) bool
	FindOne(key value.Datum) value.Int

	// TestUniqueness reports whether no two live rows share a non-NA
	// value in this index.
	TestUniqueness() bool

	// Len reports the number of indexed (rowID, key) entries.
	Len() int
}

// entry is the payload common to both variants: an index key paired with
// the row that carries it.
type entry struct {
	key   value.Datum
	rowID value.Int
}

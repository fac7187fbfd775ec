package index

import "grnxx/internal/value"

// New constructs an empty index of the given kind over columns of typ.
func New(kind Kind, typ value.DataType) Index {
	if kind == Hash {
		return newHash(typ)
	}
	return newTree(typ)
}

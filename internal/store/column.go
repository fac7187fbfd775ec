package store

import (
	"math"

	"github.com/kelindar/bitmap"

	"grnxx/internal/errors"
	"grnxx/internal/index"
	"grnxx/internal/value"
)

// ColumnRef names a column in another table that references rows of this
// one (a referrer column), used both for NOT_REMOVABLE diagnostics and
// for cascading clears on row removal.
type ColumnRef struct {
	Table  string
	Column string
}

// Column owns one table column's storage: a dense, per-DataType array
// (or, for Bool, a pair of bitmaps) sized to at least max_row_id+1,
// plus any attached indexes and, for reference columns, the name of the
// table it points into.
type Column struct {
	table *Table
	name  string
	typ   value.DataType
	isKey bool

	refTable    string // "" unless this is a reference column
	refTablePtr *Table

	boolValid bitmap.Bitmap
	boolValue bitmap.Bitmap

	ints   []value.Int
	floats []value.Float
	geos   []value.GeoPoint
	texts  []value.Text

	vecBools  []value.VecBool
	vecInts   []value.VecInt
	vecFloats []value.VecFloat
	vecGeos   []value.VecGeoPoint
	vecTexts  []value.VecText

	indexes []index.Index
}

func newColumn(t *Table, name string, typ value.DataType) *Column {
	return &Column{table: t, name: name, typ: typ}
}

func (c *Column) Name() string         { return c.name }
func (c *Column) Type() value.DataType { return c.typ }
func (c *Column) IsKey() bool          { return c.isKey }

// IsReference reports whether this column holds row IDs into another
// table (Int or Vector<Int> declared with a reference table).
func (c *Column) IsReference() bool { return c.refTable != "" }
func (c *Column) ReferenceTable() string { return c.refTable }

// ResolvedReferenceTable returns the *Table this reference column points
// into, or nil if it is not a reference column. It is used by the
// expression engine's Dereference node to switch evaluation scope.
func (c *Column) ResolvedReferenceTable() *Table { return c.refTablePtr }

// grow extends every backing store so that row n is addressable,
// filling new slots with the type's N/A value.
func (c *Column) grow(n int) {
	switch c.typ {
	case value.TypeBool:
		c.boolValid.Grow(uint32(n))
		c.boolValue.Grow(uint32(n))
	case value.TypeInt:
		c.ints = growInt(c.ints, n)
	case value.TypeFloat:
		c.floats = growFloat(c.floats, n)
	case value.TypeGeoPoint:
		c.geos = growGeo(c.geos, n)
	case value.TypeText:
		c.texts = growTo(c.texts, n, value.NAText)
	case value.TypeVectorBool:
		c.vecBools = growTo(c.vecBools, n, value.NAVector[value.Bool]())
	case value.TypeVectorInt:
		c.vecInts = growTo(c.vecInts, n, value.NAVector[value.Int]())
	case value.TypeVectorFloat:
		c.vecFloats = growTo(c.vecFloats, n, value.NAVector[value.Float]())
	case value.TypeVectorGeoPoint:
		c.vecGeos = growTo(c.vecGeos, n, value.NAVector[value.GeoPoint]())
	case value.TypeVectorText:
		c.vecTexts = growTo(c.vecTexts, n, value.NAVector[value.Text]())
	}
}

func growTo[T any](s []T, n int, na T) []T {
	for len(s) < n {
		s = append(s, na)
	}
	return s
}

func growInt(s []value.Int, n int) []value.Int     { return growTo(s, n, value.NAInt) }
func growFloat(s []value.Float, n int) []value.Float { return growTo(s, n, value.NAFloat) }
func growGeo(s []value.GeoPoint, n int) []value.GeoPoint {
	return growTo(s, n, value.NAGeoPoint)
}

// Get reads the value stored at rowID as a Datum. Out-of-range or never-
// written rows read as the type's N/A value.
func (c *Column) Get(rowID value.Int) value.Datum {
	i := int(rowID)
	switch c.typ {
	case value.TypeBool:
		if i < 0 || !c.boolValid.Contains(uint32(i)) {
			return value.FromBool(value.NABool)
		}
		return value.FromBool(value.BoolOf(c.boolValue.Contains(uint32(i))))
	case value.TypeInt:
		if i < 0 || i >= len(c.ints) {
			return value.FromInt(value.NAInt)
		}
		return value.FromInt(c.ints[i])
	case value.TypeFloat:
		if i < 0 || i >= len(c.floats) {
			return value.FromFloat(value.NAFloat)
		}
		return value.FromFloat(c.floats[i])
	case value.TypeGeoPoint:
		if i < 0 || i >= len(c.geos) {
			return value.FromGeoPoint(value.NAGeoPoint)
		}
		return value.FromGeoPoint(c.geos[i])
	case value.TypeText:
		if i < 0 || i >= len(c.texts) {
			return value.FromText(value.NAText)
		}
		return value.FromText(c.texts[i])
	case value.TypeVectorBool:
		if i < 0 || i >= len(c.vecBools) {
			return value.FromVecBool(value.NAVector[value.Bool]())
		}
		return value.FromVecBool(c.vecBools[i])
	case value.TypeVectorInt:
		if i < 0 || i >= len(c.vecInts) {
			return value.FromVecInt(value.NAVector[value.Int]())
		}
		return value.FromVecInt(c.vecInts[i])
	case value.TypeVectorFloat:
		if i < 0 || i >= len(c.vecFloats) {
			return value.FromVecFloat(value.NAVector[value.Float]())
		}
		return value.FromVecFloat(c.vecFloats[i])
	case value.TypeVectorGeoPoint:
		if i < 0 || i >= len(c.vecGeos) {
			return value.FromVecGeoPoint(value.NAVector[value.GeoPoint]())
		}
		return value.FromVecGeoPoint(c.vecGeos[i])
	case value.TypeVectorText:
		if i < 0 || i >= len(c.vecTexts) {
			return value.FromVecText(value.NAVector[value.Text]())
		}
		return value.FromVecText(c.vecTexts[i])
	default:
		return value.NA(c.typ)
	}
}

// Set stores d at rowID, growing backing storage as needed, maintaining
// every attached index, storing any NaN Float as the N/A sentinel, and
// (for a key column) rejecting NA and
// duplicate keys. On index-insert failure mid-way through multiple
// indexes, already-inserted entries are rolled back before the error is
// surfaced.
func (c *Column) Set(rowID value.Int, d value.Datum) error {
	if d.Type() != c.typ {
		return errors.New(errors.InvalidOperand, "column %q: value has type %s, want %s", c.name, d.Type(), c.typ)
	}
	if d.Type() == value.TypeFloat && math.IsNaN(float64(d.AsFloat())) {
		d = value.NA(value.TypeFloat)
	}
	if c.isKey && d.IsNA() {
		return errors.New(errors.InvalidArgument, "column %q: key column cannot be set to N/A", c.name)
	}
	if c.isKey {
		if existing := c.findByValue(d); !existing.IsNA() && existing != rowID {
			return errors.New(errors.AlreadyExists, "column %q: duplicate key", c.name).WithRow(int64(rowID))
		}
	}
	if c.refTablePtr != nil && !d.IsNA() {
		if err := c.checkReferencedRowsLive(d); err != nil {
			return err
		}
	}

	n := int(rowID) + 1
	c.grow(n)

	old := c.Get(rowID)
	c.write(rowID, d)

	inserted := make([]index.Index, 0, len(c.indexes))
	for _, ix := range c.indexes {
		if !old.IsNA() && !value.MatchDatum(old, d) {
			ix.Remove(rowID, old)
		}
		if err := ix.Insert(rowID, d); err != nil {
			for _, done := range inserted {
				done.Remove(rowID, d)
			}
			c.write(rowID, old)
			return errors.Wrap(err, "column %q: index insert failed", c.name)
		}
		inserted = append(inserted, ix)
	}
	return nil
}

// checkReferencedRowsLive enforces the reference-column invariant: every
// row ID stored in a reference column must be live in the referenced
// table. d is known non-NA and type-checked against c.typ already.
func (c *Column) checkReferencedRowsLive(d value.Datum) error {
	switch c.typ {
	case value.TypeInt:
		row := d.AsInt()
		if !c.refTablePtr.TestRow(row) {
			return errors.New(errors.InvalidArgument, "column %q: referenced row %d is not live in table %q", c.name, int64(row), c.refTablePtr.Name())
		}
	case value.TypeVectorInt:
		vec := d.AsVecInt()
		for i := value.Int(0); i < vec.Size(); i++ {
			row := value.At(vec, i, value.NAInt)
			if row.IsNA() {
				continue
			}
			if !c.refTablePtr.TestRow(row) {
				return errors.New(errors.InvalidArgument, "column %q: referenced row %d is not live in table %q", c.name, int64(row), c.refTablePtr.Name())
			}
		}
	}
	return nil
}

func (c *Column) write(rowID value.Int, d value.Datum) {
	i := int(rowID)
	switch c.typ {
	case value.TypeBool:
		c.boolValid.Set(uint32(i))
		b := d.AsBool()
		if b.IsNA() {
			c.boolValid.Remove(uint32(i))
			return
		}
		if b == value.True {
			c.boolValue.Set(uint32(i))
		} else {
			c.boolValue.Remove(uint32(i))
		}
	case value.TypeInt:
		c.ints[i] = d.AsInt()
	case value.TypeFloat:
		c.floats[i] = d.AsFloat()
	case value.TypeGeoPoint:
		c.geos[i] = d.AsGeoPoint()
	case value.TypeText:
		c.texts[i] = d.AsText()
	case value.TypeVectorBool:
		c.vecBools[i] = d.AsVecBool()
	case value.TypeVectorInt:
		c.vecInts[i] = d.AsVecInt()
	case value.TypeVectorFloat:
		c.vecFloats[i] = d.AsVecFloat()
	case value.TypeVectorGeoPoint:
		c.vecGeos[i] = d.AsVecGeoPoint()
	case value.TypeVectorText:
		c.vecTexts[i] = d.AsVecText()
	}
}

// Unset clears rowID back to N/A, removing it from every attached index.
func (c *Column) Unset(rowID value.Int) {
	old := c.Get(rowID)
	if old.IsNA() {
		return
	}
	for _, ix := range c.indexes {
		ix.Remove(rowID, old)
	}
	c.write(rowID, value.NA(c.typ))
}

// findByValue does a best-fit index lookup, or a linear scan from row 0
// to the table's max row id if no index is attached.
func (c *Column) findByValue(d value.Datum) value.Int {
	for _, ix := range c.indexes {
		return ix.FindOne(d)
	}
	max := c.table.MaxRowID()
	if max.IsNA() {
		return value.NAInt
	}
	for r := value.Int(0); r <= max; r++ {
		if !c.table.TestRow(r) {
			continue
		}
		if value.MatchDatum(c.Get(r), d) {
			return r
		}
	}
	return value.NAInt
}

// Contains reports whether any live row holds d, consulting the best-fit
// index if one exists.
func (c *Column) Contains(d value.Datum) bool {
	if d.IsNA() {
		return false
	}
	return !c.findByValue(d).IsNA()
}

// FindOne returns any one live row holding d, or N/A.
func (c *Column) FindOne(d value.Datum) value.Int {
	return c.findByValue(d)
}

// AttachIndex builds an index of the given kind over the column's
// current contents and attaches it for future maintenance.
func (c *Column) AttachIndex(kind index.Kind) (index.Index, error) {
	ix := index.New(kind, c.typ)
	max := c.table.MaxRowID()
	if !max.IsNA() {
		for r := value.Int(0); r <= max; r++ {
			if !c.table.TestRow(r) {
				continue
			}
			d := c.Get(r)
			if d.IsNA() {
				continue
			}
			if err := ix.Insert(r, d); err != nil {
				return nil, errors.Wrap(err, "column %q: building index", c.name)
			}
		}
	}
	c.indexes = append(c.indexes, ix)
	return ix, nil
}

// clearReference is invoked by the referenced table when row rowID is
// removed: scalar reference columns are set to N/A; vector reference
// columns have the referenced element removed and the rest compacted.
func (c *Column) clearReference(removed value.Int) {
	switch c.typ {
	case value.TypeInt:
		max := c.table.MaxRowID()
		if max.IsNA() {
			return
		}
		for r := value.Int(0); r <= max; r++ {
			if !c.table.TestRow(r) {
				continue
			}
			if c.Get(r).AsInt() == removed {
				c.Unset(r)
			}
		}
	case value.TypeVectorInt:
		max := c.table.MaxRowID()
		if max.IsNA() {
			return
		}
		for r := value.Int(0); r <= max; r++ {
			if !c.table.TestRow(r) {
				continue
			}
			vec := c.vecInts[int(r)]
			if vec.IsNA() {
				continue
			}
			filtered := make([]value.Int, 0, len(vec.Elems))
			changed := false
			for _, e := range vec.Elems {
				if e == removed {
					changed = true
					continue
				}
				filtered = append(filtered, e)
			}
			if changed {
				c.vecInts[int(r)] = value.NewVector(filtered)
			}
		}
	}
}

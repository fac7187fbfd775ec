// Package store implements Table and Column, the row/column storage
// layer: a compact row bitmap with a two-level free-slot summary index,
// per-DataType column storage, key-column uniqueness, and referrer
// tracking/cleanup across tables.
package store

import (
	"sync"

	"github.com/kelindar/bitmap"

	"grnxx/internal/cursor"
	"grnxx/internal/errors"
	"grnxx/internal/value"
)

// wordBits is the width of one row-bitmap word; the summary index tracks
// free-slot availability per word and aggregates 64 words per outer bit.
const wordBits = 64

// Table owns a name, an ordered column list, an optional key column, a
// row bitmap with its two-level free-slot summary, and the list of
// referrer columns (columns in other tables pointing into this one).
type Table struct {
	mu sync.RWMutex

	name string

	columns     []*Column
	columnIndex map[string]int
	keyColumn   string

	rows     bitmap.Bitmap
	summary  []uint64 // summary[i] is 1 iff row-word i has a free slot, else 0
	outer    []uint64 // outer[i] is nonzero whenever any of summary words [64i, 64i+63] is nonzero (it may stay nonzero after they all drop to 0)
	maxRowID value.Int
	numRows  int

	referrers []ColumnRef
}

// New constructs an empty table named name.
func New(name string) *Table {
	return &Table{
		name:        name,
		columnIndex: make(map[string]int),
		maxRowID:    value.NAInt,
	}
}

func (t *Table) Name() string { return t.name }

// Columns returns column names in current (insertion/reorder) order.
func (t *Table) Columns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.columnIndex[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ReferrerColumns lists the columns in other tables that reference this
// table, for NOT_REMOVABLE diagnostics and cascading clears.
func (t *Table) ReferrerColumns() []ColumnRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ColumnRef, len(t.referrers))
	copy(out, t.referrers)
	return out
}

// registerReferrer records that ref points into this table; called by
// CreateColumn on the referenced table when a reference column is
// created elsewhere.
func (t *Table) registerReferrer(ref ColumnRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.referrers = append(t.referrers, ref)
}

func (t *Table) unregisterReferrer(ref ColumnRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.referrers {
		if r == ref {
			t.referrers = append(t.referrers[:i], t.referrers[i+1:]...)
			return
		}
	}
}

// CreateColumn adds a new column. refTable, if non-nil, marks it as a
// reference column into another table (only valid for Int and
// Vector<Int>) and registers the referrer back-link on refTable.
func (t *Table) CreateColumn(name string, typ value.DataType, refTable *Table) (*Column, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.columnIndex[name]; exists {
		return nil, errors.New(errors.AlreadyExists, "table %q: column %q already exists", t.name, name).WithName(name)
	}
	if name == "" {
		return nil, errors.New(errors.InvalidName, "table %q: column name must not be empty", t.name)
	}
	if refTable != nil && typ != value.TypeInt && typ != value.TypeVectorInt {
		return nil, errors.New(errors.InvalidArgument, "table %q: column %q: only Int or Vector<Int> may reference a table", t.name, name)
	}

	col := newColumn(t, name, typ)
	if !t.maxRowID.IsNA() {
		col.grow(int(t.maxRowID) + 1)
	}
	if refTable != nil {
		col.refTable = refTable.name
		col.refTablePtr = refTable
		refTable.registerReferrer(ColumnRef{Table: t.name, Column: name})
	}

	t.columnIndex[name] = len(t.columns)
	t.columns = append(t.columns, col)
	return col, nil
}

// RemoveColumn deletes a named column. Fails NOT_REMOVABLE if it is the
// key column (callers must demote it first) — removal of a reference
// column, by contrast, is always allowed and simply drops the back-link
// it registered on its target table.
func (t *Table) RemoveColumn(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.columnIndex[name]
	if !ok {
		return errors.New(errors.NotFound, "table %q: no column %q", t.name, name).WithName(name)
	}
	if t.keyColumn == name {
		return errors.New(errors.NotRemovable, "table %q: column %q is the key column", t.name, name).WithName(name)
	}
	if col := t.columns[i]; col.refTablePtr != nil {
		col.refTablePtr.unregisterReferrer(ColumnRef{Table: t.name, Column: name})
	}

	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.columnIndex, name)
	for n, idx := range t.columnIndex {
		if idx > i {
			t.columnIndex[n] = idx - 1
		}
	}
	return nil
}

// RenameColumn renames a column in place, preserving its position.
func (t *Table) RenameColumn(oldName, newName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.columnIndex[oldName]
	if !ok {
		return errors.New(errors.NotFound, "table %q: no column %q", t.name, oldName).WithName(oldName)
	}
	if _, exists := t.columnIndex[newName]; exists {
		return errors.New(errors.AlreadyExists, "table %q: column %q already exists", t.name, newName).WithName(newName)
	}
	t.columns[i].name = newName
	delete(t.columnIndex, oldName)
	t.columnIndex[newName] = i
	if t.keyColumn == oldName {
		t.keyColumn = newName
	}
	return nil
}

// ReorderColumn moves column name to immediately after predecessor
// (empty predecessor moves it to the head).
func (t *Table) ReorderColumn(name, predecessor string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.columnIndex[name]
	if !ok {
		return errors.New(errors.NotFound, "table %q: no column %q", t.name, name).WithName(name)
	}
	if predecessor != "" {
		if _, ok := t.columnIndex[predecessor]; !ok {
			return errors.New(errors.NotFound, "table %q: no column %q", t.name, predecessor).WithName(predecessor)
		}
	}

	col := t.columns[i]
	remaining := make([]*Column, 0, len(t.columns)-1)
	remaining = append(remaining, t.columns[:i]...)
	remaining = append(remaining, t.columns[i+1:]...)

	insertAt := 0
	if predecessor != "" {
		for idx, c := range remaining {
			if c.name == predecessor {
				insertAt = idx + 1
				break
			}
		}
	}

	reordered := make([]*Column, 0, len(t.columns))
	reordered = append(reordered, remaining[:insertAt]...)
	reordered = append(reordered, col)
	reordered = append(reordered, remaining[insertAt:]...)

	t.columns = reordered
	t.reindexColumns()
	return nil
}

func (t *Table) reindexColumns() {
	for idx, c := range t.columns {
		t.columnIndex[c.name] = idx
	}
}

// SetKeyColumn promotes an existing column to key status, scanning it
// for N/A values and duplicates first.
func (t *Table) SetKeyColumn(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.columnIndex[name]
	if !ok {
		return errors.New(errors.NotFound, "table %q: no column %q", t.name, name).WithName(name)
	}
	col := t.columns[i]
	if col.typ != value.TypeInt && col.typ != value.TypeText {
		return errors.New(errors.InvalidOperation, "table %q: only Int or Text columns may be a key", t.name).WithName(name)
	}

	seen := make(map[string]bool)
	if !t.maxRowID.IsNA() {
		for r := value.Int(0); r <= t.maxRowID; r++ {
			if !t.testRowLocked(r) {
				continue
			}
			d := col.Get(r)
			if d.IsNA() {
				return errors.New(errors.InvalidOperation, "table %q: column %q has N/A values", t.name, name).WithName(name)
			}
			k := d.ForceText().String()
			if seen[k] {
				return errors.New(errors.AlreadyExists, "table %q: column %q has duplicate values", t.name, name).WithName(name)
			}
			seen[k] = true
		}
	}

	t.keyColumn = name
	col.isKey = true
	return nil
}

// KeyColumn returns the name of the key column, or "" if none.
func (t *Table) KeyColumn() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.keyColumn
}

func (t *Table) testRowLocked(rowID value.Int) bool {
	if rowID.IsNA() || rowID < 0 {
		return false
	}
	return t.rows.Contains(uint32(rowID))
}

// TestRow reports whether rowID is live.
func (t *Table) TestRow(rowID value.Int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.testRowLocked(rowID)
}

// MaxRowID returns the largest live row id, or N/A if the table is empty.
func (t *Table) MaxRowID() value.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxRowID
}

// NumRows returns the number of live rows.
func (t *Table) NumRows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numRows
}

// IsFull reports whether every slot up to max_row_id is live.
func (t *Table) IsFull() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.maxRowID.IsNA() {
		return true
	}
	return t.numRows == int(t.maxRowID)+1
}

// nextFreeSlot finds the lowest free row id using the two-level bitmap
// summary: the inner level tracks, per row-bitmap word, whether it has
// any free bit; the outer level tracks, per 64 inner words, whether any
// of them has a free bit. Search descends outer -> inner -> bit.
func (t *Table) nextFreeSlot() uint32 {
	for oi := 0; oi < len(t.outer); oi++ {
		if t.outer[oi] == 0 {
			continue
		}
		for bit := 0; bit < wordBits; bit++ {
			wi := oi*wordBits + bit
			if wi >= len(t.summary) {
				break
			}
			if t.summary[wi] == 0 {
				continue
			}
			word := t.rowWord(wi)
			for b := 0; b < wordBits; b++ {
				if word&(1<<uint(b)) == 0 {
					return uint32(wi*wordBits + b)
				}
			}
		}
	}
	// Nothing free within the allocated range; the next slot is one past
	// the current capacity.
	return uint32(len(t.summary) * wordBits)
}

func (t *Table) rowWord(wi int) uint64 {
	lo := wi * wordBits
	var w uint64
	for b := 0; b < wordBits; b++ {
		if t.rows.Contains(uint32(lo + b)) {
			w |= 1 << uint(b)
		}
	}
	return w
}

// markLive sets rowID live in the row bitmap and updates the summary
// index and max_row_id/num_rows bookkeeping.
func (t *Table) markLive(rowID uint32) {
	t.rows.Grow(rowID)
	t.rows.Set(rowID)
	t.ensureSummaryCapacity(rowID)
	t.refreshSummaryWord(int(rowID) / wordBits)

	for _, col := range t.columns {
		col.grow(int(rowID) + 1)
	}

	if t.maxRowID.IsNA() || value.Int(rowID) > t.maxRowID {
		t.maxRowID = value.Int(rowID)
	}
	t.numRows++
}

func (t *Table) markFree(rowID uint32) {
	t.rows.Remove(rowID)
	t.refreshSummaryWord(int(rowID) / wordBits)
	t.numRows--
}

func (t *Table) ensureSummaryCapacity(rowID uint32) {
	need := int(rowID)/wordBits + 1
	for len(t.summary) < need {
		t.summary = append(t.summary, 0)
	}
	outerNeed := (len(t.summary)-1)/wordBits + 1
	for len(t.outer) < outerNeed {
		t.outer = append(t.outer, 0)
	}
}

func (t *Table) refreshSummaryWord(wi int) {
	if wi >= len(t.summary) {
		return
	}
	word := t.rowWord(wi)
	hasFree := word != ^uint64(0)
	if hasFree {
		t.summary[wi] = 1
	} else {
		t.summary[wi] = 0
	}
	oi := wi / wordBits
	ob := uint(wi % wordBits)
	any := false
	base := oi * wordBits
	for i := 0; i < wordBits && base+i < len(t.summary); i++ {
		if t.summary[base+i] != 0 {
			any = true
			break
		}
	}
	if any {
		t.outer[oi] |= 1 << ob
	} else {
		t.outer[oi] &^= 1 << ob
	}
}

// InsertRow allocates the lowest free row slot. If the table has a key
// column, key must convert to its type, must not already exist, and must
// not be N/A.
func (t *Table) InsertRow(key value.Datum) (value.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertRowLocked(value.Int(t.nextFreeSlot()), key, false)
}

// InsertRowAt recreates a specific slot; fails if it is already live.
func (t *Table) InsertRowAt(rowID value.Int, key value.Datum) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.insertRowLocked(rowID, key, true)
	return err
}

func (t *Table) insertRowLocked(rowID value.Int, key value.Datum, mustBeFree bool) (value.Int, error) {
	if mustBeFree && t.testRowLocked(rowID) {
		return value.NAInt, errors.New(errors.AlreadyExists, "table %q: row %d is already live", t.name, int64(rowID)).WithRow(int64(rowID))
	}

	var keyCol *Column
	if t.keyColumn != "" {
		i := t.columnIndex[t.keyColumn]
		keyCol = t.columns[i]
		if key.IsNA() {
			return value.NAInt, errors.New(errors.InvalidArgument, "table %q: key must not be N/A", t.name)
		}
		converted := convertTo(key, keyCol.typ)
		if !converted.IsNA() && keyCol.Contains(converted) {
			return value.NAInt, errors.New(errors.AlreadyExists, "table %q: key already exists", t.name)
		}
		key = converted
	}

	t.markLive(uint32(rowID))
	if keyCol != nil {
		if err := keyCol.Set(rowID, key); err != nil {
			t.markFree(uint32(rowID))
			return value.NAInt, err
		}
	}
	return rowID, nil
}

func convertTo(d value.Datum, typ value.DataType) value.Datum {
	if d.Type() == typ {
		return d
	}
	switch typ {
	case value.TypeInt:
		return value.FromInt(d.ForceInt())
	case value.TypeText:
		return value.FromText(d.ForceText())
	default:
		return d
	}
}

// FindOrInsertRow exists only on keyed tables: O(1) via the key column's
// index if present, otherwise O(n) scan.
func (t *Table) FindOrInsertRow(key value.Datum) (value.Int, bool, error) {
	t.mu.Lock()
	if t.keyColumn == "" {
		t.mu.Unlock()
		return value.NAInt, false, errors.New(errors.NoKeyColumn, "table %q: has no key column", t.name)
	}
	keyCol := t.columns[t.columnIndex[t.keyColumn]]
	converted := convertTo(key, keyCol.typ)
	if existing := keyCol.FindOne(converted); !existing.IsNA() {
		t.mu.Unlock()
		return existing, false, nil
	}
	t.mu.Unlock()

	rowID, err := t.InsertRow(key)
	if err != nil {
		return value.NAInt, false, err
	}
	return rowID, true, nil
}

// RemoveRow clears the bitmap bit, unsets every column's value, then
// notifies referrer columns in other tables to clear references to this
// row. resolve looks up a table by name for referrer notification.
func (t *Table) RemoveRow(rowID value.Int, resolve func(tableName string) (*Table, bool)) error {
	t.mu.Lock()
	if !t.testRowLocked(rowID) {
		t.mu.Unlock()
		return errors.New(errors.NotFound, "table %q: row %d is not live", t.name, int64(rowID)).WithRow(int64(rowID))
	}
	for _, col := range t.columns {
		col.Unset(rowID)
	}
	t.markFree(uint32(rowID))
	referrers := make([]ColumnRef, len(t.referrers))
	copy(referrers, t.referrers)
	t.mu.Unlock()

	for _, ref := range referrers {
		if resolve == nil {
			continue
		}
		other, ok := resolve(ref.Table)
		if !ok {
			continue
		}
		col, ok := other.Column(ref.Column)
		if !ok {
			continue
		}
		col.clearReference(rowID)
	}
	return nil
}

// CreateCursor builds a cursor walking this table's live rows per opts.
func (t *Table) CreateCursor(opts cursor.Options) cursor.Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	liveCopy := make(bitmap.Bitmap, len(t.rows))
	copy(liveCopy, t.rows)
	return cursor.NewBitmapCursor(liveCopy, t.maxRowID, opts)
}

package index

import (
	"github.com/google/btree"

	"grnxx/internal/value"
)

// treeIndex is the ordered variant: keys compare with value.CompareDatum,
// so only Int, Float, GeoPoint, and Text columns may carry one. Multiple
// rows may share a key (entries are distinguished by rowID as a
// tiebreaker), so TestUniqueness walks the tree rather than relying on
// btree's own replace-on-duplicate behavior.
type treeIndex struct {
	typ  value.DataType
	tree *btree.BTreeG[entry]
	n    int
}

const treeDegree = 32

func newTree(typ value.DataType) *treeIndex {
	less := func(a, b entry) bool {
		if c := value.CompareDatum(a.key, b.key); c != 0 {
			return c < 0
		}
		return a.rowID < b.rowID
	}
	return &treeIndex{typ: typ, tree: btree.NewG(treeDegree, less)}
}

func (t *treeIndex) Kind() Kind             { return Tree }
func (t *treeIndex) ValueType() value.DataType { return t.typ }
func (t *treeIndex) Len() int                { return t.n }

func (t *treeIndex) Insert(rowID value.Int, key value.Datum) error {
	if key.IsNA() {
		return nil
	}
	e := entry{key: key, rowID: rowID}
	if _, existed := t.tree.ReplaceOrInsert(e); !existed {
		t.n++
	}
	return nil
}

func (t *treeIndex) Remove(rowID value.Int, key value.Datum) error {
	if key.IsNA() {
		return nil
	}
	e := entry{key: key, rowID: rowID}
	if _, existed := t.tree.Delete(e); existed {
		t.n--
	}
	return nil
}

func (t *treeIndex) Contains(key value.Datum) bool {
	found := false
	t.scanEqual(key, func(entry) bool {
		found = true
		return false
	})
	return found
}

func (t *treeIndex) FindOne(key value.Datum) value.Int {
	result := value.NAInt
	t.scanEqual(key, func(e entry) bool {
		result = e.rowID
		return false
	})
	return result
}

// scanEqual walks every entry whose key matches the probe, stopping early
// when visit returns false.
func (t *treeIndex) scanEqual(key value.Datum, visit func(entry) bool) {
	if key.IsNA() {
		return
	}
	lo := entry{key: key, rowID: value.NAInt + 1}
	t.tree.AscendGreaterOrEqual(lo, func(e entry) bool {
		if value.CompareDatum(e.key, key) != 0 {
			return false
		}
		return visit(e)
	})
}

func (t *treeIndex) TestUniqueness() bool {
	unique := true
	var prev entry
	first := true
	t.tree.Ascend(func(e entry) bool {
		if !first && value.CompareDatum(prev.key, e.key) == 0 {
			unique = false
			return false
		}
		prev = e
		first = false
		return true
	})
	return unique
}

// Range produces the row IDs whose key lies in [lo, hi) (lo/hi may be
// NA to mean "unbounded" on that side), in ascending key order, or in
// descending key order when reverse is true.
func (t *treeIndex) Range(lo, hi value.Datum, reverse bool, visit func(value.Int) bool) {
	walk := func(e entry) bool { return visit(e.rowID) }
	switch {
	case reverse:
		t.tree.Descend(func(e entry) bool {
			if !lo.IsNA() && value.CompareDatum(e.key, lo) < 0 {
				return false
			}
			if !hi.IsNA() && value.CompareDatum(e.key, hi) >= 0 {
				return true
			}
			return walk(e)
		})
	case !lo.IsNA():
		t.tree.AscendGreaterOrEqual(entry{key: lo}, func(e entry) bool {
			if !hi.IsNA() && value.CompareDatum(e.key, hi) >= 0 {
				return false
			}
			return walk(e)
		})
	default:
		t.tree.Ascend(func(e entry) bool {
			if !hi.IsNA() && value.CompareDatum(e.key, hi) >= 0 {
				return false
			}
			return walk(e)
		})
	}
}

// Prefix produces the row IDs whose Text key starts with prefix, in
// ascending key order. Only valid for TypeText trees.
func (t *treeIndex) Prefix(prefix value.Text, visit func(value.Int) bool) {
	if prefix.IsNA() {
		return
	}
	start := value.FromText(prefix)
	t.tree.AscendGreaterOrEqual(entry{key: start}, func(e entry) bool {
		if value.StartsWith(e.key.AsText(), prefix) != value.True {
			return false
		}
		return visit(e.rowID)
	})
}

// LongestPrefixMatch finds the single longest indexed key that is a
// prefix of probe, or value.NAInt if none matches.
func (t *treeIndex) LongestPrefixMatch(probe value.Text) value.Int {
	best := value.NAInt
	bestLen := -1
	t.tree.Ascend(func(e entry) bool {
		k := e.key.AsText()
		if value.StartsWith(probe, k) == value.True && k.Len() > bestLen {
			best = e.rowID
			bestLen = k.Len()
		}
		return true
	})
	return best
}

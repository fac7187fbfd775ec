package index

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"grnxx/internal/value"
)

// hashIndex is the unordered variant: equality only, no range support.
// Buckets are selected by a 64-bit hash of a canonical byte encoding of
// the key (xxhash, or a blake2b digest for long Text keys); within a
// bucket, entries are compared in full with value.MatchDatum.
type hashIndex struct {
	typ     value.DataType
	buckets map[uint64][]entry
	n       int
}

func newHash(typ value.DataType) *hashIndex {
	return &hashIndex{typ: typ, buckets: make(map[uint64][]entry)}
}

func (h *hashIndex) Kind() Kind                { return Hash }
func (h *hashIndex) ValueType() value.DataType { return h.typ }
func (h *hashIndex) Len() int                  { return h.n }

func (h *hashIndex) Insert(rowID value.Int, key value.Datum) error {
	if key.IsNA() {
		return nil
	}
	bucket := hashDatum(key)
	h.buckets[bucket] = append(h.buckets[bucket], entry{key: key, rowID: rowID})
	h.n++
	return nil
}

func (h *hashIndex) Remove(rowID value.Int, key value.Datum) error {
	if key.IsNA() {
		return nil
	}
	bucket := hashDatum(key)
	entries := h.buckets[bucket]
	for i, e := range entries {
		if e.rowID == rowID && value.MatchDatum(e.key, key) {
			entries = append(entries[:i], entries[i+1:]...)
			h.n--
			break
		}
	}
	if len(entries) == 0 {
		delete(h.buckets, bucket)
	} else {
		h.buckets[bucket] = entries
	}
	return nil
}

func (h *hashIndex) Contains(key value.Datum) bool {
	return !h.FindOne(key).IsNA()
}

func (h *hashIndex) FindOne(key value.Datum) value.Int {
	if key.IsNA() {
		return value.NAInt
	}
	for _, e := range h.buckets[hashDatum(key)] {
		if value.MatchDatum(e.key, key) {
			return e.rowID
		}
	}
	return value.NAInt
}

func (h *hashIndex) TestUniqueness() bool {
	for _, entries := range h.buckets {
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				if value.MatchDatum(entries[i].key, entries[j].key) {
					return false
				}
			}
		}
	}
	return true
}

// hashDatum computes the bucket selector for a non-NA Datum: the xxhash
// of its byte encoding, except that Text keys longer than 64 bytes use
// the first 8 bytes of their blake2b-256 digest instead. This is a bucket
// selector, not a uniqueness proof, so Contains/FindOne still confirm
// with MatchDatum.
func hashDatum(d value.Datum) uint64 {
	switch d.Type() {
	case value.TypeInt:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(d.AsInt()))
		return xxhash.Sum64(buf[:])
	case value.TypeFloat:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(float64(d.AsFloat())))
		return xxhash.Sum64(buf[:])
	case value.TypeBool:
		if d.AsBool() == value.True {
			return xxhash.Sum64([]byte{1})
		}
		return xxhash.Sum64([]byte{0})
	case value.TypeGeoPoint:
		g := d.AsGeoPoint()
		var buf [8]byte
		binary.LittleEndian.PutUint32(buf[:4], uint32(g.LatMilli))
		binary.LittleEndian.PutUint32(buf[4:], uint32(g.LonMilli))
		return xxhash.Sum64(buf[:])
	case value.TypeText:
		b := d.AsText().Bytes
		if len(b) <= 64 {
			return xxhash.Sum64(b)
		}
		sum := blake2b.Sum256(b)
		return binary.LittleEndian.Uint64(sum[:8])
	default:
		return 0
	}
}

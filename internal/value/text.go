package value

import "bytes"

// Text is a byte sequence of length >= 0. The N/A sentinel is a nil byte
// slice; every constructed valid Text (including the empty string) holds
// a non-nil slice, so IsNA never misclassifies "".
type Text struct {
	Bytes []byte
}

var NAText = Text{Bytes: nil}

// NewText constructs a valid (non-NA) Text from a Go string, including
// the empty string.
func NewText(s string) Text {
	b := make([]byte, len(s))
	copy(b, s)
	return Text{Bytes: b}
}

// IsNA reports whether t is the N/A sentinel.
func (t Text) IsNA() bool { return t.Bytes == nil }

// String renders the text; returns "" for N/A (callers that need to
// distinguish N/A from empty text must check IsNA explicitly).
func (t Text) String() string {
	if t.IsNA() {
		return ""
	}
	return string(t.Bytes)
}

// Len returns the byte length, or -1 for N/A (mirroring the internal
// negative-length-tag convention at the API boundary).
func (t Text) Len() int {
	if t.IsNA() {
		return -1
	}
	return len(t.Bytes)
}

// MatchText implements match(a,b): true iff both NA, or both non-NA and
// byte-identical.
func MatchText(a, b Text) bool {
	if a.IsNA() || b.IsNA() {
		return a.IsNA() && b.IsNA()
	}
	return bytes.Equal(a.Bytes, b.Bytes)
}

// EqualText implements equal(a,b): NA if either operand is NA.
func EqualText(a, b Text) Bool {
	if a.IsNA() || b.IsNA() {
		return NABool
	}
	return BoolOf(bytes.Equal(a.Bytes, b.Bytes))
}

// CompareText implements lexicographic ordering for two non-NA texts.
func CompareText(a, b Text) int {
	return bytes.Compare(a.Bytes, b.Bytes)
}

// StartsWith, EndsWith, Contains return N/A if either operand is N/A.
func StartsWith(s, prefix Text) Bool {
	if s.IsNA() || prefix.IsNA() {
		return NABool
	}
	return BoolOf(bytes.HasPrefix(s.Bytes, prefix.Bytes))
}

func EndsWith(s, suffix Text) Bool {
	if s.IsNA() || suffix.IsNA() {
		return NABool
	}
	return BoolOf(bytes.HasSuffix(s.Bytes, suffix.Bytes))
}

func Contains(s, substr Text) Bool {
	if s.IsNA() || substr.IsNA() {
		return NABool
	}
	return BoolOf(bytes.Contains(s.Bytes, substr.Bytes))
}

// ByteAt implements Text's subscript operator: the byte at idx as an Int,
// or N/A if idx is out of range or s is N/A.
func ByteAt(s Text, idx Int) Int {
	if s.IsNA() || idx.IsNA() {
		return NAInt
	}
	if idx < 0 || int(idx) >= len(s.Bytes) {
		return NAInt
	}
	return Int(s.Bytes[idx])
}

package value

import "golang.org/x/exp/constraints"

// compareOrdered orders two values of any constraints.Ordered type,
// shared by CompareInt and CompareFloat so the three-way (-1, 0, 1)
// comparison logic lives in exactly one place.
func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

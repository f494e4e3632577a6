// Package detect implements the two deadlock-detection strategies:
// wait-for graph cycle detection for single-instance systems and the
// work/finish reachability simulation for the general case. Both are
// pure functions of an immutable SystemState.
package detect

import (
	"fmt"
	"strings"
)

// vectorLEQ reports whether a ≤ b component-wise. A single failing
// component fails the comparison.
func vectorLEQ(a, b []int) bool {
	for j := range a {
		if a[j] > b[j] {
			return false
		}
	}
	return true
}

// vectorAdd adds b into a in place.
func vectorAdd(a, b []int) {
	for j := range a {
		a[j] += b[j]
	}
}

func vectorString(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

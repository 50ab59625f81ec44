package catalog

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted version strings component-wise.
// It returns -1 when a < b, 1 when a > b and 0 when they are equal.
// Missing trailing components count as zero, so "92.0" equals "92.0.0.0".
// An empty version sorts before any concrete version.
func CompareVersions(a, b string) int {
	if a == "" || b == "" {
		switch {
		case a == b:
			return 0
		case a == "":
			return -1
		default:
			return 1
		}
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	length := len(partsA)
	if len(partsB) > length {
		length = len(partsB)
	}

	for i := 0; i < length; i++ {
		numA := componentAt(partsA, i)
		numB := componentAt(partsB, i)

		switch {
		case numA < numB:
			return -1
		case numA > numB:
			return 1
		}
	}

	return 0
}

// componentAt parses the i-th version component, treating missing or
// malformed components as zero.
func componentAt(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}

	n, err := strconv.Atoi(parts[i])
	if err != nil || n < 0 {
		return 0
	}

	return n
}

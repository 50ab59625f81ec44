package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCompareVersions covers ordering, padding equality and empty versions.
func TestCompareVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"92.0.4515.159", "93.0.4577.82", -1},
		{"93.0.4577.82", "92.0.4515.159", 1},
		{"92.0.4515.159", "92.0.4515.159", 0},
		{"92.0", "92.0.0.0", 0},
		{"92", "92.0.0.1", -1},
		{"100.0", "99.0.9999.999", 1},
		{"92.0.4515", "92.0.4516", -1},
		{"", "0.0.0.1", -1},
		{"0.0.0.1", "", 1},
		{"", "", 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "compare(%q, %q)", tt.a, tt.b)
	}
}

// TestCompareVersions_Antisymmetry checks compare(a,b) == -compare(b,a)
// across a grid of representative versions.
func TestCompareVersions_Antisymmetry(t *testing.T) {
	t.Parallel()

	versions := []string{
		"", "1", "1.0", "1.0.0.0", "1.0.0.1", "2", "92.0.4515.159",
		"93.0.4577.82", "93.0.4577", "100.0.0.0",
	}

	for _, a := range versions {
		for _, b := range versions {
			require.Equal(t, -CompareVersions(b, a), CompareVersions(a, b),
				"compare(%q, %q)", a, b)
		}
	}
}

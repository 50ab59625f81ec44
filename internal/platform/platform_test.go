package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLookup verifies known names resolve and unknown names fail.
func TestLookup(t *testing.T) {
	t.Parallel()

	p, err := Lookup("linux")
	require.NoError(t, err)
	require.Equal(t, "Linux_x64", p.StoragePrefix)
	require.Equal(t, "chrome-linux.zip", p.ArchiveName)

	_, err = Lookup("solaris")
	require.Error(t, err)
}

// TestResolve_EmptyUsesHost ensures an empty name falls back to detection.
func TestResolve_EmptyUsesHost(t *testing.T) {
	t.Parallel()

	p, err := Resolve("")
	require.NoError(t, err)
	require.NotEmpty(t, p.StoragePrefix)
}

// TestExecutablePath verifies binary paths are built from the bundle layout.
func TestExecutablePath(t *testing.T) {
	t.Parallel()

	p, err := Lookup("linux")
	require.NoError(t, err)

	require.Equal(t,
		filepath.Join("/base/builds/911515", "chrome"),
		p.ExecutablePath("/base/builds/911515"))
	require.Equal(t, "/base/builds/911515", p.ExecutableDir("/base/builds/911515"))

	mac, err := Lookup("mac")
	require.NoError(t, err)
	require.Equal(t,
		filepath.Join("/base/builds/911515", "Chromium.app", "Contents", "MacOS"),
		mac.ExecutableDir("/base/builds/911515"))
}

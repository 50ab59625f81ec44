package install

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// listEntries returns the names of directory entries under dir.
func listEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

// TestAtomically_PublishesPopulatedDirectory covers the happy path:
// populate, publish, temp dir gone.
func TestAtomically_PublishesPopulatedDirectory(t *testing.T) {
	t.Parallel()

	workRoot := filepath.Join(t.TempDir(), "work")
	finalPath := filepath.Join(t.TempDir(), "builds", "911515")

	err := Atomically(context.Background(), func(tempDir string) (string, error) {
		bundle := filepath.Join(tempDir, "chrome-linux")
		require.NoError(t, os.MkdirAll(bundle, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(bundle, "chrome"), []byte("binary"), 0o644))

		return bundle, nil
	}, finalPath, workRoot)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(finalPath, "chrome"))
	require.NoError(t, err)
	require.Equal(t, "binary", string(contents))

	require.Empty(t, listEntries(t, workRoot), "temporary directory left behind")
}

// TestAtomically_PopulateFailure verifies the original error propagates,
// the final path stays absent and no temp dir remains.
func TestAtomically_PopulateFailure(t *testing.T) {
	t.Parallel()

	workRoot := filepath.Join(t.TempDir(), "work")
	finalPath := filepath.Join(t.TempDir(), "builds", "911515")
	wantErr := errors.New("extraction exploded")

	err := Atomically(context.Background(), func(tempDir string) (string, error) {
		// Leave debris behind to prove cleanup is recursive.
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "partial"), []byte("x"), 0o644))

		return "", wantErr
	}, finalPath, workRoot)
	require.ErrorIs(t, err, wantErr)

	_, err = os.Stat(finalPath)
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.Empty(t, listEntries(t, workRoot), "temporary directory left behind")
}

// TestAtomically_KeepsPreviousInstallOnFailure verifies an existing
// installation survives a failed attempt untouched.
func TestAtomically_KeepsPreviousInstallOnFailure(t *testing.T) {
	t.Parallel()

	workRoot := filepath.Join(t.TempDir(), "work")
	finalPath := filepath.Join(t.TempDir(), "builds", "stable")

	require.NoError(t, os.MkdirAll(finalPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(finalPath, "chrome"), []byte("old"), 0o644))

	err := Atomically(context.Background(), func(string) (string, error) {
		return "", errors.New("boom")
	}, finalPath, workRoot)
	require.Error(t, err)

	contents, err := os.ReadFile(filepath.Join(finalPath, "chrome"))
	require.NoError(t, err)
	require.Equal(t, "old", string(contents))
}

// TestAtomically_ReplacesPreviousInstall verifies a successful install
// over an existing one swaps content and leaves no parked copy.
func TestAtomically_ReplacesPreviousInstall(t *testing.T) {
	t.Parallel()

	workRoot := filepath.Join(t.TempDir(), "work")
	parent := t.TempDir()
	finalPath := filepath.Join(parent, "stable")

	require.NoError(t, os.MkdirAll(finalPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(finalPath, "chrome"), []byte("old"), 0o644))

	err := Atomically(context.Background(), func(tempDir string) (string, error) {
		bundle := filepath.Join(tempDir, "bundle")
		require.NoError(t, os.MkdirAll(bundle, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(bundle, "chrome"), []byte("new"), 0o644))

		return bundle, nil
	}, finalPath, workRoot)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(finalPath, "chrome"))
	require.NoError(t, err)
	require.Equal(t, "new", string(contents))

	require.Equal(t, []string{"stable"}, listEntries(t, parent))
}

// TestCopyTree verifies the rename fallback path copies nested content
// and preserves permission bits.
func TestCopyTree(t *testing.T) {
	t.Parallel()

	source := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(source, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "nested", "chrome"), []byte("bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "readme"), []byte("docs"), 0o644))

	destination := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, copyTree(source, destination))

	info, err := os.Stat(filepath.Join(destination, "nested", "chrome"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	contents, err := os.ReadFile(filepath.Join(destination, "readme"))
	require.NoError(t, err)
	require.Equal(t, "docs", string(contents))
}

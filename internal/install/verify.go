package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okonechnikov/chromesnap/internal/platform"
)

// executableMode is the permission mask added to every file in the
// bundle's executable directory.
const executableMode os.FileMode = 0o111

// VerifyBundle checks that an installation at path carries the expected
// bundle layout for the platform: the install directory itself and the
// directory containing the browser binary. As a side effect it
// normalizes the execute bit on every file inside the executable
// directory; the normalization is idempotent. It returns false when the
// layout is missing and an error only when normalization itself fails.
func VerifyBundle(path string, p platform.Platform) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	execDir := p.ExecutableDir(path)
	if _, err := os.Stat(execDir); err != nil {
		return false, nil
	}

	entries, err := os.ReadDir(execDir)
	if err != nil {
		return false, fmt.Errorf("read executable dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		entryPath := filepath.Join(execDir, entry.Name())

		info, infoErr := entry.Info()
		if infoErr != nil {
			return false, fmt.Errorf("stat %s: %w", entryPath, infoErr)
		}

		if err = os.Chmod(entryPath, info.Mode().Perm()|executableMode); err != nil {
			return false, fmt.Errorf("normalize permissions on %s: %w", entryPath, err)
		}
	}

	return true, nil
}

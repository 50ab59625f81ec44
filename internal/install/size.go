package install

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirectorySize returns the recursive sum of file sizes under path.
// A missing path yields an error satisfying errors.Is(err, fs.ErrNotExist);
// an existing empty directory yields zero.
func DirectorySize(path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("measure %s: %w", path, err)
	}

	var total int64

	err := filepath.WalkDir(path, func(_ string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}

		total += info.Size()

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", path, err)
	}

	return total, nil
}

package download

import "os"

// ValidateSize reports whether the file at path exists and is exactly
// expectedSize bytes long. A missing (or unreadable) file validates as
// false rather than raising an error; the install pipeline treats a
// false result as a failed download.
func ValidateSize(path string, expectedSize int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Size() == expectedSize
}

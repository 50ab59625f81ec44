package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// copyBufferSize is the chunk size for streaming a response body to disk.
const copyBufferSize = 32 * 1024

// ErrBadStatus is returned when the artifact endpoint answers with a
// non-success HTTP status.
var ErrBadStatus = errors.New("unexpected http status")

// HTTPClient describes the minimal HTTP client surface, so tests can
// substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Progress describes the state of an in-flight download.
type Progress struct {
	// Transferred is how many bytes have been written so far.
	Transferred int64
	// Total is the declared artifact size, zero when unknown.
	Total int64
	// Percent is Transferred relative to Total, 0-100; zero when the
	// total is unknown.
	Percent float64
}

// ProgressFunc receives a Progress after every written chunk when the
// total size is known.
type ProgressFunc func(Progress)

// Fetch issues a streaming GET for url and writes the body to
// destination, emitting progress after each chunk. It returns only after
// the file is flushed to storage. A transport failure aborts the
// transfer and may leave a partial destination file behind; the caller
// is responsible for discarding it.
func Fetch(ctx context.Context, client HTTPClient, url, destination string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", url, resp.Status, ErrBadStatus)
	}

	if err = os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("prepare destination dir: %w", err)
	}

	file, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	if err = streamBody(resp.Body, file, total, onProgress); err != nil {
		_ = file.Close()

		return err
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("flush destination: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}

// streamBody copies the response body chunk by chunk, reporting progress
// when the total size is known.
func streamBody(body io.Reader, file *os.File, total int64, onProgress ProgressFunc) error {
	var (
		buffer      = make([]byte, copyBufferSize)
		transferred int64
	)

	for {
		n, readErr := body.Read(buffer)
		if n > 0 {
			if _, writeErr := file.Write(buffer[:n]); writeErr != nil {
				return fmt.Errorf("write destination: %w", writeErr)
			}

			transferred += int64(n)

			if onProgress != nil && total > 0 {
				onProgress(Progress{
					Transferred: transferred,
					Total:       total,
					Percent:     float64(transferred) / float64(total) * 100,
				})
			}
		}

		if readErr == io.EOF {
			return nil
		}

		if readErr != nil {
			return fmt.Errorf("read body: %w", readErr)
		}
	}
}

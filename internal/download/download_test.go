package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFetch_WritesFileAndReportsProgress streams a body to disk and
// checks per-chunk progress notifications.
func TestFetch_WritesFileAndReportsProgress(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("x", 100*1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "artifact.zip")

	var events []Progress

	err := Fetch(context.Background(), http.DefaultClient, server.URL, destination, func(p Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)

	written, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, payload, string(written))

	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, int64(len(payload)), last.Transferred)
	require.Equal(t, int64(len(payload)), last.Total)
	require.InDelta(t, 100.0, last.Percent, 0.001)

	for _, event := range events {
		require.LessOrEqual(t, event.Transferred, event.Total)
		require.GreaterOrEqual(t, event.Percent, 0.0)
		require.LessOrEqual(t, event.Percent, 100.0)
	}
}

// TestFetch_UnknownTotalSkipsProgress omits notifications when no
// length header is present.
func TestFetch_UnknownTotalSkipsProgress(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		// Chunked transfer: no Content-Length.
		_, _ = w.Write([]byte("partial"))
		flusher.Flush()
		_, _ = w.Write([]byte(" body"))
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "artifact.zip")

	var events int

	err := Fetch(context.Background(), http.DefaultClient, server.URL, destination, func(Progress) {
		events++
	})
	require.NoError(t, err)
	require.Zero(t, events)

	written, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "partial body", string(written))
}

// TestFetch_BadStatus aborts on a non-success response.
func TestFetch_BadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "artifact.zip")

	err := Fetch(context.Background(), http.DefaultClient, server.URL, destination, nil)
	require.ErrorIs(t, err, ErrBadStatus)
}

// TestValidateSize covers exact match, mismatch and the missing-file contract.
func TestValidateSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "artifact.zip")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o600))

	require.True(t, ValidateSize(path, 5))
	require.False(t, ValidateSize(path, 6))

	// A missing file validates as false, it does not raise.
	require.False(t, ValidateSize(filepath.Join(t.TempDir(), "missing.zip"), 5))
}

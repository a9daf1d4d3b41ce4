package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// uploadRecorder captures every PUT the publish step makes.
type uploadRecorder struct {
	mu     sync.Mutex
	bodies map[string]string
	types  map[string]string
	status int
}

func newUploadRecorder(status int) *uploadRecorder {
	return &uploadRecorder{
		bodies: make(map[string]string),
		types:  make(map[string]string),
		status: status,
	}
}

func (rec *uploadRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	rec.bodies[r.URL.Path] = string(body)
	rec.types[r.URL.Path] = r.Header.Get("Content-Type")
	w.WriteHeader(rec.status)
}

func TestOnRunPublish_UploadsEveryFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "lib.html"), []byte("<api>"), 0644))

	rec := newUploadRecorder(http.StatusOK)
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	// --- Act ---
	_, err := OnRunPublish(context.Background(), &Input{
		SourceDir: dir,
		TargetURL: srv.URL + "/docs/",
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "<html>", rec.bodies["/docs/index.html"])
	require.Equal(t, "<api>", rec.bodies["/docs/api/lib.html"])
	require.Contains(t, rec.types["/docs/index.html"], "text/html")
}

func TestOnRunPublish_ServerErrorFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0644))

	srv := httptest.NewServer(newUploadRecorder(http.StatusForbidden))
	t.Cleanup(srv.Close)

	_, err := OnRunPublish(context.Background(), &Input{
		SourceDir: dir,
		TargetURL: srv.URL,
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed with status")
}

func TestOnRunPublish_EmptyTargetFails(t *testing.T) {
	t.Parallel()

	_, err := OnRunPublish(context.Background(), &Input{
		SourceDir: t.TempDir(),
		TargetURL: "",
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "no publish target")
}

func TestOnRunPublish_MissingSourceDirFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newUploadRecorder(http.StatusOK))
	t.Cleanup(srv.Close)

	_, err := OnRunPublish(context.Background(), &Input{
		SourceDir: filepath.Join(t.TempDir(), "missing"),
		TargetURL: srv.URL,
	})

	require.Error(t, err)
}

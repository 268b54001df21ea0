package runstore

import (
	"path/filepath"
	"testing"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// createTestStore creates a file-backed store under a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// liveConfig returns a short config with a defined kappa seed so the
// trajectory carries nonzero values through both tables.
func liveConfig() *config.Config {
	cfg := config.Default()
	cfg.TickCount = 2
	cfg.KoppaSeed = rational.New(1, 1)
	return cfg
}

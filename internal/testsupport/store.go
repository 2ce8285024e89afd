package testsupport

import (
	"testing"

	"spool/internal/catalog"
	"spool/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

package ops

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/hpungsan/citrus/internal/cache"
	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/normalize"
)

// fakeFetcher serves canned payloads and counts calls per method.
type fakeFetcher struct {
	mu       sync.Mutex
	search   []byte
	ean      []byte
	eanXML   []byte
	estimate string
	err      error
	calls    map[string]int
}

func (f *fakeFetcher) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

func (f *fakeFetcher) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeFetcher) Search(_ context.Context, _ string, _ int) ([]byte, error) {
	f.record("search")
	return f.search, f.err
}

func (f *fakeFetcher) LookupEAN(_ context.Context, _ string) ([]byte, error) {
	f.record("ean")
	return f.ean, f.err
}

func (f *fakeFetcher) LookupEANXML(_ context.Context, _ string) ([]byte, error) {
	f.record("ean_xml")
	return f.eanXML, f.err
}

func (f *fakeFetcher) Estimate(_ context.Context, _ string) (string, error) {
	f.record("estimate")
	return f.estimate, f.err
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestService(t *testing.T, f *fakeFetcher) *Service {
	t.Helper()
	c, err := cache.OpenInMemory(time.Hour, logger.Nop())
	if err != nil {
		t.Fatalf("cache.OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return &Service{
		Fetcher:    f,
		Normalizer: normalize.New(normalize.Options{}),
		Cache:      c,
		Log:        logger.Nop(),
		PageSize:   20,
	}
}

// noon is a fixed logging time that falls in the lunch window.
var noon = time.Date(2026, 3, 11, 12, 30, 0, 0, time.Local)

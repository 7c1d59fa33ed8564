package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/typenode"
)

// CachingSource wraps any collab.Source with a sqlite-backed store:
// a per-module population marker that makes repeated populate attempts
// idempotent across processes, plus the campaign_runs history table
// speccheck records into. It complements the in-memory sync.Once a
// bare collab.Resolver already provides.
type CachingSource struct {
	Upstream collab.Source

	db *sql.DB
	mu sync.Mutex
}

// OpenCachingSource opens (creating if absent) the sqlite database at
// dbPath and wraps upstream with it. Pass ":memory:" for a process-
// local cache.
func OpenCachingSource(upstream collab.Source, dbPath string) (*CachingSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &CachingSource{Upstream: upstream, db: db}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS type_cache (
	module TEXT NOT NULL,
	defs_json TEXT NOT NULL,
	PRIMARY KEY (module)
);
CREATE TABLE IF NOT EXISTS campaign_runs (
	module TEXT NOT NULL,
	name TEXT NOT NULL,
	arity INTEGER NOT NULL,
	ok INTEGER NOT NULL,
	counter_example_json TEXT,
	ran_at TEXT NOT NULL
);
`

// cacheEntry is the population-marker payload. The defs themselves
// always come from Upstream; the row's existence is what makes a
// second populate attempt for the same module idempotent.
type cacheEntry struct {
	Module string
	Count  int
}

func (c *CachingSource) LookupTypes(module string) ([]*typenode.Def, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	row := c.db.QueryRow(`SELECT length(defs_json) FROM type_cache WHERE module = ?`, module)
	if err := row.Scan(&count); err == nil {
		return c.Upstream.LookupTypes(module)
	}

	defs, err := c.Upstream.LookupTypes(module)
	if err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(cacheEntry{Module: module, Count: len(defs)})
	_, execErr := c.db.Exec(`INSERT OR IGNORE INTO type_cache (module, defs_json) VALUES (?, ?)`, module, string(payload))
	if execErr != nil {
		return nil, fmt.Errorf("cache populate %s: %w", module, execErr)
	}
	return defs, nil
}

func (c *CachingSource) LookupSpecs(module, name string, arity int) ([]collab.Signature, error) {
	return c.Upstream.LookupSpecs(module, name, arity)
}

func (c *CachingSource) IsProtocol(module, name string) (bool, error) {
	return c.Upstream.IsProtocol(module, name)
}

// RecordCampaign appends one spec-check campaign outcome to the
// campaign_runs table, so a later run can flag "this overload failed
// last time too" regressions.
func (c *CachingSource) RecordCampaign(module, name string, arity int, ok bool, counterExample []any, ranAt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ceJSON sql.NullString
	if len(counterExample) > 0 {
		b, err := json.Marshal(counterExample)
		if err == nil {
			ceJSON = sql.NullString{String: string(b), Valid: true}
		}
	}
	okInt := 0
	if ok {
		okInt = 1
	}
	_, err := c.db.Exec(
		`INSERT INTO campaign_runs (module, name, arity, ok, counter_example_json, ran_at) VALUES (?, ?, ?, ?, ?, ?)`,
		module, name, arity, okInt, ceJSON, ranAt,
	)
	return err
}

// LastCampaignOK reports whether the most recent recorded campaign for
// module:name/arity succeeded. The second return is false when no
// prior run is on record.
func (c *CachingSource) LastCampaignOK(module, name string, arity int) (ok bool, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(
		`SELECT ok FROM campaign_runs WHERE module = ? AND name = ? AND arity = ? ORDER BY rowid DESC LIMIT 1`,
		module, name, arity,
	)
	var okInt int
	if scanErr := row.Scan(&okInt); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return false, false, nil
		}
		return false, false, scanErr
	}
	return okInt != 0, true, nil
}

// Close releases the underlying database handle.
func (c *CachingSource) Close() error { return c.db.Close() }

var _ collab.Source = (*CachingSource)(nil)

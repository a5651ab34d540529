// Package cache stores compiled hand-off payloads in SQLite, keyed by the
// content of the unit they came from.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/garnet/compiler"
	"github.com/chazu/garnet/compiler/hash"
)

// ErrNotFound indicates no payload is stored under the requested hash.
var ErrNotFound = errors.New("cache: unit not found")

var log = commonlog.GetLogger("garnet.cache")

// Cache is an open payload store.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the store at path, creating parent directories as
// needed.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS units (
		hash    TEXT PRIMARY KEY,
		unit_id TEXT NOT NULL,
		kind    TEXT NOT NULL,
		payload BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating table: %w", err)
	}

	log.Infof("opened %s", path)
	return &Cache{db: db, path: path}, nil
}

// Path returns the database file the cache was opened on.
func (c *Cache) Path() string { return c.path }

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Put stores a hand-off under key, replacing any earlier payload.
func (c *Cache) Put(key [32]byte, h *compiler.Handoff) error {
	payload, err := compiler.MarshalHandoff(h)
	if err != nil {
		return fmt.Errorf("cache: encoding payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO units (hash, unit_id, kind, payload) VALUES (?, ?, ?, ?)",
		hex.EncodeToString(key[:]), h.Unit.String(), h.Kind.String(), payload,
	)
	if err != nil {
		return fmt.Errorf("cache: saving unit: %w", err)
	}
	log.Debugf("stored %s (%d bytes)", hex.EncodeToString(key[:8]), len(payload))
	return nil
}

// Key is the cache key of u. The content hash leaves out source lines
// and transform rewrites, both of which the hand-off carries, so Key adds
// them: units that differ only in layout or enabled transforms get
// separate payloads.
func Key(u *compiler.Unit) [32]byte {
	h := sha256.New()
	h.Write(hash.Serialize(u))

	var b [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	for _, sc := range u.Scopes() {
		writeInt(sc.Line)
	}
	for _, r := range u.References() {
		writeInt(r.Line)
	}
	compiler.Walk(u.Root, func(n compiler.Node) bool {
		if s, ok := n.(*compiler.Send); ok && s.Special != nil {
			writeInt(s.Line())
			writeInt(len(s.Special.Transform))
			h.Write([]byte(s.Special.Transform))
		}
		return true
	})

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Store stores the hand-off of u under Key(u), returning the key.
func (c *Cache) Store(u *compiler.Unit) ([32]byte, error) {
	key := Key(u)
	h, err := u.Handoff()
	if err != nil {
		return key, fmt.Errorf("cache: %w", err)
	}
	return key, c.Put(key, h)
}

// Get loads the hand-off stored under key.
func (c *Cache) Get(key [32]byte) (*compiler.Handoff, error) {
	var payload []byte
	err := c.db.QueryRow("SELECT payload FROM units WHERE hash = ?", hex.EncodeToString(key[:])).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("miss %s", hex.EncodeToString(key[:8]))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cache: querying unit: %w", err)
	}
	log.Debugf("hit %s", hex.EncodeToString(key[:8]))

	h, err := compiler.UnmarshalHandoff(payload)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return h, nil
}

// Lookup returns the stored hand-off for a unit with the same content and
// lines as u, stamped with u's ID.
func (c *Cache) Lookup(u *compiler.Unit) (*compiler.Handoff, error) {
	h, err := c.Get(Key(u))
	if err != nil {
		return nil, err
	}
	h.Unit = u.ID
	return h, nil
}

// Len counts the stored payloads.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM units").Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: counting units: %w", err)
	}
	return n, nil
}

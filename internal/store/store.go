// Package store provides a SQLite-backed list of dispensary and resource links.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a named link does not exist.
	ErrNotFound = errors.New("link not found")
	// ErrInvalidURL is returned for links that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid url: must be an absolute http or https URL")
	// ErrEmptyName is returned when a link name is blank.
	ErrEmptyName = errors.New("name must not be empty")
)

// Link is a named URL shown in the shop and resource lists.
type Link struct {
	Name string
	URL  string
}

// Store provides SQLite-backed link storage.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path and seeds the
// default links on first use.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seeding defaults: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seed() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if version < 1 {
		now := time.Now().UTC().Format(time.RFC3339)
		for i, l := range defaultDispensaries {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO dispensaries (name, url, position, added_at)
				VALUES (?, ?, ?, ?)`, l.Name, l.URL, i, now); err != nil {
				return err
			}
		}
		if err := seedResources(tx, defaultResources); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := seedResources(tx, footerResources); err != nil {
			return err
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// seedResources appends links after the current last resource.
func seedResources(tx *sql.Tx, links []Link) error {
	var next int
	if err := tx.QueryRow("SELECT COALESCE(MAX(position) + 1, 0) FROM resources").Scan(&next); err != nil {
		return err
	}
	for i, l := range links {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO resources (label, url, position)
			VALUES (?, ?, ?)`, l.Name, l.URL, next+i); err != nil {
			return err
		}
	}
	return nil
}

// Dispensaries returns all dispensaries in display order.
func (s *Store) Dispensaries() ([]Link, error) {
	return s.list("SELECT name, url FROM dispensaries ORDER BY position, name")
}

// Resources returns all resource links in display order.
func (s *Store) Resources() ([]Link, error) {
	return s.list("SELECT label, url FROM resources ORDER BY position, label")
}

func (s *Store) list(query string) ([]Link, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.Name, &l.URL); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Dispensary looks up a dispensary by name, case-insensitively.
func (s *Store) Dispensary(name string) (Link, error) {
	return s.get("SELECT name, url FROM dispensaries WHERE name = ?", name)
}

// Resource looks up a resource link by label, case-insensitively.
func (s *Store) Resource(label string) (Link, error) {
	return s.get("SELECT label, url FROM resources WHERE label = ?", label)
}

func (s *Store) get(query, name string) (Link, error) {
	var l Link
	err := s.db.QueryRow(query, strings.TrimSpace(name)).Scan(&l.Name, &l.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return Link{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l, err
}

// AddDispensary inserts a dispensary at the end of the list, or updates the
// URL of an existing one with the same name.
func (s *Store) AddDispensary(name, rawURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u, err := ValidateURL(rawURL)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO dispensaries (name, url, position, added_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM dispensaries), ?)
		ON CONFLICT(name) DO UPDATE SET url = excluded.url`,
		name, u, time.Now().UTC().Format(time.RFC3339))
	return err
}

// RemoveDispensary deletes a dispensary by name.
func (s *Store) RemoveDispensary(name string) error {
	res, err := s.db.Exec("DELETE FROM dispensaries WHERE name = ?", strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL and returns it trimmed.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

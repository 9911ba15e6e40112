// Package registry persists officers, the police station and saved
// affidavit templates in SQLite.
package registry

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid record")
)

const schema = `
CREATE TABLE IF NOT EXISTS officers (
	badge      TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS station (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS templates (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	hash       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

var templateNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Store is the SQLite-backed registry.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writes.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("registry %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ListOfficers returns every officer ordered by badge number.
func (s *Store) ListOfficers(ctx context.Context) ([]casefile.Officer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM officers ORDER BY badge`)
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}
	defer rows.Close()

	officers := []casefile.Officer{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan officer: %w", err)
		}
		var o casefile.Officer
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, fmt.Errorf("decode officer: %w", err)
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

// GetOfficer returns the officer with the given badge number.
func (s *Store) GetOfficer(ctx context.Context, badge string) (casefile.Officer, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM officers WHERE badge = ?`, badge).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return casefile.Officer{}, fmt.Errorf("officer %q: %w", badge, ErrNotFound)
	}
	if err != nil {
		return casefile.Officer{}, fmt.Errorf("get officer: %w", err)
	}
	var o casefile.Officer
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return casefile.Officer{}, fmt.Errorf("decode officer: %w", err)
	}
	return o, nil
}

// PutOfficer inserts or replaces an officer keyed by badge number.
func (s *Store) PutOfficer(ctx context.Context, o casefile.Officer) error {
	return putOfficer(ctx, s.db, o)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putOfficer(ctx context.Context, db execer, o casefile.Officer) error {
	o.BadgeNumber = strings.TrimSpace(o.BadgeNumber)
	if o.BadgeNumber == "" {
		return fmt.Errorf("%w: officer needs a badge number", ErrInvalid)
	}
	if strings.TrimSpace(o.FullName) == "" {
		return fmt.Errorf("%w: officer %q needs a name", ErrInvalid, o.BadgeNumber)
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode officer: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO officers (badge, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(badge) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		o.BadgeNumber, string(data), now())
	if err != nil {
		return fmt.Errorf("put officer: %w", err)
	}
	return nil
}

// ImportOfficers upserts a roster in one transaction. Nothing is written
// when any officer is invalid.
func (s *Store) ImportOfficers(ctx context.Context, officers []casefile.Officer) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()
	for i, o := range officers {
		if err := putOfficer(ctx, tx, o); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(officers), nil
}

// DeleteOfficer removes an officer.
func (s *Store) DeleteOfficer(ctx context.Context, badge string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM officers WHERE badge = ?`, badge)
	if err != nil {
		return fmt.Errorf("delete officer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("officer %q: %w", badge, ErrNotFound)
	}
	return nil
}

// Station returns the saved police station.
func (s *Store) Station(ctx context.Context) (casefile.PoliceStation, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM station WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return casefile.PoliceStation{}, fmt.Errorf("station: %w", ErrNotFound)
	}
	if err != nil {
		return casefile.PoliceStation{}, fmt.Errorf("get station: %w", err)
	}
	var st casefile.PoliceStation
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return casefile.PoliceStation{}, fmt.Errorf("decode station: %w", err)
	}
	return st, nil
}

// PutStation replaces the saved police station.
func (s *Store) PutStation(ctx context.Context, st casefile.PoliceStation) error {
	if strings.TrimSpace(st.Name) == "" {
		return fmt.Errorf("%w: station needs a name", ErrInvalid)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode station: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO station (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), now())
	if err != nil {
		return fmt.Errorf("put station: %w", err)
	}
	return nil
}

// SeedStation saves st only when no station is saved yet.
func (s *Store) SeedStation(ctx context.Context, st casefile.PoliceStation) error {
	_, err := s.Station(ctx)
	if errors.Is(err, ErrNotFound) {
		return s.PutStation(ctx, st)
	}
	return err
}

// TemplateInfo describes a saved template without its content.
type TemplateInfo struct {
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredTemplate is a saved template.
type StoredTemplate struct {
	TemplateInfo
	Document doctree.Document `json:"document"`
}

// ContentHash is the BLAKE3 hex digest of a document's canonical JSON.
func ContentHash(doc doctree.Document) (string, error) {
	data, err := doctree.Encode(doc)
	if err != nil {
		return "", err
	}
	return hashBytes(data), nil
}

func hashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PutTemplate saves doc under name and returns its content hash.
func (s *Store) PutTemplate(ctx context.Context, name string, doc doctree.Document) (string, error) {
	if !templateNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: template name %q", ErrInvalid, name)
	}
	doc = doctree.Normalize(doc.Clone())
	data, err := doctree.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}
	hash := hashBytes(data)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (name, content, hash, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET content = excluded.content, hash = excluded.hash, updated_at = excluded.updated_at`,
		name, string(data), hash, now())
	if err != nil {
		return "", fmt.Errorf("put template: %w", err)
	}
	return hash, nil
}

// GetTemplate returns a saved template.
func (s *Store) GetTemplate(ctx context.Context, name string) (*StoredTemplate, error) {
	var content, hash, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT content, hash, updated_at FROM templates WHERE name = ?`, name).Scan(&content, &hash, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	doc, err := doctree.Decode([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	ts, _ := time.Parse(time.RFC3339, updated)
	return &StoredTemplate{
		TemplateInfo: TemplateInfo{Name: name, Hash: hash, UpdatedAt: ts},
		Document:     doc,
	}, nil
}

// ListTemplates returns saved templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, hash, updated_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	infos := []TemplateInfo{}
	for rows.Next() {
		var info TemplateInfo
		var updated string
		if err := rows.Scan(&info.Name, &info.Hash, &updated); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteTemplate removes a saved template.
func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return nil
}

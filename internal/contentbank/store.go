// Package contentbank is a local reference store for generated pages and card
// deck packages: a SQLite index plus a directory of package files.
package contentbank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/alnah/go-mdcards/internal/fileutil"
	"github.com/alnah/go-mdcards/internal/h5p"
)

// Sentinel errors for content bank operations.
var (
	ErrNotFound        = errors.New("content bank entry not found")
	ErrInvalidFilename = errors.New("invalid package filename")
	ErrNilPackage      = errors.New("package is nil")
	ErrEmptySessionID  = errors.New("session id is empty")
)

const (
	dbName   = "contentbank.db"
	filesDir = "files"

	// timeLayout keeps every fraction digit so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

var _ h5p.LibraryRegistry = (*Store)(nil)

// PackageRecord describes a stored package file.
type PackageRecord struct {
	ID        string
	Filename  string
	Title     string
	Size      int64
	CreatedAt time.Time
}

// Page is a generated course page. PackageID is empty when the page has no
// embedded deck.
type Page struct {
	SessionID string
	Title     string
	HTML      string
	PackageID string
	UpdatedAt time.Time
}

// Open opens or creates a content bank rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, filesDir), 0o750); err != nil {
		return nil, fmt.Errorf("create content bank dir: %w", err)
	}

	dsn := filepath.Join(dir, dbName) +
		"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection serializes writers; SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS packages (
		id          TEXT PRIMARY KEY,
		filename    TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		size        INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		session_id  TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		html        TEXT NOT NULL,
		package_id  TEXT REFERENCES packages(id) ON DELETE SET NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pages_package ON pages(package_id);

	CREATE TABLE IF NOT EXISTS libraries (
		machine_name  TEXT NOT NULL,
		major_version INTEGER NOT NULL,
		minor_version INTEGER NOT NULL,
		installed_at  TEXT NOT NULL,
		PRIMARY KEY (machine_name, major_version, minor_version)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the index.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the content bank root.
func (s *Store) Dir() string {
	return s.dir
}

// PackagePath returns where the file of a stored package lives.
func (s *Store) PackagePath(filename string) string {
	return filepath.Join(s.dir, filesDir, filename)
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), ulid.DefaultEntropy()).String()
}

// SavePackage writes the archive file and indexes it.
func (s *Store) SavePackage(ctx context.Context, pkg *h5p.Package) (*PackageRecord, error) {
	if pkg == nil {
		return nil, ErrNilPackage
	}
	if err := validateFilename(pkg.Filename); err != nil {
		return nil, err
	}

	path := s.PackagePath(pkg.Filename)
	if err := fileutil.WriteFileAtomic(path, pkg.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write package: %w", err)
	}

	rec := &PackageRecord{
		ID:        s.newID(),
		Filename:  pkg.Filename,
		Title:     pkg.Title,
		Size:      int64(len(pkg.Data)),
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO packages (id, filename, title, size, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Title, rec.Size, rec.CreatedAt.Format(timeLayout))
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("insert package: %w", err)
	}
	return rec, nil
}

// DeletePackage removes the package row and its file. Pages referencing it
// keep their HTML and lose the reference.
func (s *Store) DeletePackage(ctx context.Context, id string) error {
	var filename string
	err := s.db.QueryRowContext(ctx, `SELECT filename FROM packages WHERE id = ?`, id).Scan(&filename)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: package %q", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("lookup package: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE pages SET package_id = NULL WHERE package_id = ?`, id); err != nil {
		return fmt.Errorf("unlink package: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := os.Remove(s.PackagePath(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove package file: %w", err)
	}
	return nil
}

// SavePage inserts or replaces the page of a session. When the page pointed
// to another package before, that package row and file are removed.
func (s *Store) SavePage(ctx context.Context, page Page) error {
	if strings.TrimSpace(page.SessionID) == "" {
		return ErrEmptySessionID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var previous sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT package_id FROM pages WHERE session_id = ?`, page.SessionID).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup page: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pages (session_id, title, html, package_id, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   title = excluded.title,
		   html = excluded.html,
		   package_id = excluded.package_id,
		   updated_at = excluded.updated_at`,
		page.SessionID, page.Title, page.HTML, nullable(page.PackageID),
		s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	var orphan string
	if previous.Valid && previous.String != "" && previous.String != page.PackageID {
		err = tx.QueryRowContext(ctx,
			`SELECT filename FROM packages WHERE id = ?`, previous.String).Scan(&orphan)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup previous package: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, previous.String); err != nil {
			return fmt.Errorf("delete previous package: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if orphan != "" {
		if err := os.Remove(s.PackagePath(orphan)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove previous package file: %w", err)
		}
	}
	return nil
}

// Page returns the page stored for sessionID.
func (s *Store) Page(ctx context.Context, sessionID string) (*Page, error) {
	var (
		p         Page
		packageID sql.NullString
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, title, html, package_id, updated_at FROM pages WHERE session_id = ?`,
		sessionID).Scan(&p.SessionID, &p.Title, &p.HTML, &packageID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: page %q", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	p.PackageID = packageID.String
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &p, nil
}

// Packages lists stored packages, newest first.
func (s *Store) Packages(ctx context.Context) ([]PackageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, title, size, created_at FROM packages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var out []PackageRecord
	for rows.Next() {
		var (
			rec       PackageRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Title, &rec.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// HasLibrary reports whether lib is installed with the exact major.minor version.
func (s *Store) HasLibrary(ctx context.Context, lib h5p.Library) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM libraries
		 WHERE machine_name = ? AND major_version = ? AND minor_version = ?`,
		lib.MachineName, lib.MajorVersion, lib.MinorVersion).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup library: %w", err)
	}
	return n > 0, nil
}

// InstallLibrary records lib as installed. Installing twice is a no-op.
func (s *Store) InstallLibrary(ctx context.Context, lib h5p.Library) error {
	if strings.TrimSpace(lib.MachineName) == "" {
		return fmt.Errorf("%w: empty machine name", h5p.ErrInvalidLibrary)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO libraries (machine_name, major_version, minor_version, installed_at)
		 VALUES (?, ?, ?, ?)`,
		lib.MachineName, lib.MajorVersion, lib.MinorVersion, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("install library: %w", err)
	}
	return nil
}

func validateFilename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, "/\\\x00") ||
		strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

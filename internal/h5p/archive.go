package h5p

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/alnah/go-mdcards/internal/fileutil"
)

// archiveEntry is one JSON document of the package, in write order.
type archiveEntry struct {
	name string
	doc  any
}

// buildArchive stages the documents in a fresh scratch directory under root,
// zips them in order and returns the archive bytes. The scratch directory is
// removed on every path.
func buildArchive(root string, modified time.Time, entries []archiveEntry) (data []byte, err error) {
	dir, cleanup, err := fileutil.ScratchDir(root, "h5p")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := cleanup(); rmErr != nil && err == nil {
			err = fmt.Errorf("removing scratch dir: %w", rmErr)
			data = nil
		}
	}()

	for _, e := range entries {
		if err := stageJSON(dir, e); err != nil {
			return nil, err
		}
	}

	archivePath := filepath.Join(dir, "package"+Extension)
	if err := writeZip(archivePath, dir, modified, entries); err != nil {
		return nil, err
	}

	data, err = os.ReadFile(archivePath) // #nosec G304 -- path inside our scratch dir
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return data, nil
}

// stageJSON writes e.doc as JSON to its entry path under dir.
func stageJSON(dir string, e archiveEntry) error {
	raw, err := json.Marshal(e.doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", e.name, err)
	}

	path := filepath.Join(dir, filepath.FromSlash(e.name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("staging %s: %w", e.name, err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("staging %s: %w", e.name, err)
	}
	return nil
}

// writeZip copies the staged entries into a deflate archive at path.
func writeZip(path, dir string, modified time.Time, entries []archiveEntry) (err error) {
	f, err := os.Create(path) // #nosec G304 -- path inside our scratch dir
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing archive: %w", closeErr)
		}
	}()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if err := copyEntry(zw, dir, e.name, modified); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return nil
}

func copyEntry(zw *zip.Writer, dir, name string, modified time.Time) error {
	src, err := os.Open(filepath.Join(dir, filepath.FromSlash(name))) // #nosec G304 -- staged file
	if err != nil {
		return fmt.Errorf("opening staged %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

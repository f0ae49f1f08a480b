package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

// WriteCSV writes the header row and then every row of t.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing %s header: %w", t.Name, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing %s rows: %w", t.Name, err)
	}
	return nil
}

// Writer writes tables into a directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dir. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteAll writes each table to <dir>/<name>.csv and returns the paths. Files
// are written to a temporary name first so readers never see a partial file.
func (w *Writer) WriteAll(tables ...Table) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(w.dir, t.FileName())
		if err := writeFile(path, t); err != nil {
			return nil, err
		}
		logger.Debug("table exported", logger.Fields{"table": t.Name, "rows": len(t.Rows), "path": path})
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, t Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+t.Name+"-*.csv")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

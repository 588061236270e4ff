// Package manifest implements the CSV manifest carrying one row per
// translatable string between the two pipeline phases.
package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jkataja/xlatprep/resfile"
)

// Header is the fixed manifest column set, in order.
var Header = []string{"source_file", "key", "original_text", "translated_text"}

// Row is one translatable unit.
type Row struct {
	// SourceFile is the base name of the resource file the string came from.
	SourceFile string
	// Key is the string key, unique within its source file.
	Key string
	// OriginalText is the source text, after pretranslation rules.
	OriginalText string
	// TranslatedText is empty until the manual translation step fills it.
	TranslatedText string
}

// Manifest is an ordered sequence of rows. Row order is insertion order and
// is preserved across write/read so translated values can be pasted back to
// the XML files by (source file, key) lookup.
type Manifest struct {
	Rows []Row

	// seen guards the (source_file, key) uniqueness invariant.
	seen map[[2]string]bool
}

// SchemaError reports a manifest file whose header does not match Header,
// or a data row with the wrong number of fields.
type SchemaError struct {
	Path   string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{seen: make(map[[2]string]bool)}
}

// Append adds one row per entry for the given source file, with translated
// text left empty. Returns an error if a (source file, key) pair repeats.
func (m *Manifest) Append(sourceFile string, entries []resfile.Entry) error {
	for _, e := range entries {
		if err := m.add(Row{SourceFile: sourceFile, Key: e.Key, OriginalText: e.Text}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) add(r Row) error {
	if m.seen == nil {
		m.seen = make(map[[2]string]bool)
	}
	id := [2]string{r.SourceFile, r.Key}
	if m.seen[id] {
		return fmt.Errorf("duplicate manifest row for %s key %q", r.SourceFile, r.Key)
	}
	m.seen[id] = true
	m.Rows = append(m.Rows, r)
	return nil
}

// TranslatedCount returns how many rows have a non-empty translated text.
func (m *Manifest) TranslatedCount() int {
	n := 0
	for _, r := range m.Rows {
		if strings.TrimSpace(r.TranslatedText) != "" {
			n++
		}
	}
	return n
}

// WriteFile writes the manifest as UTF-8 CSV with the fixed header. Standard
// csv quoting keeps embedded commas, quotes and newlines intact so a
// write-then-read round trip reproduces text fields byte for byte.
func (m *Manifest) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, r := range m.Rows {
		record := []string{r.SourceFile, r.Key, r.OriginalText, r.TranslatedText}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads a manifest previously written by WriteFile, validating the
// header and the field count of every row.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, &SchemaError{Path: path, Detail: err.Error()}
	}
	if len(records) == 0 {
		return nil, &SchemaError{Path: path, Detail: "missing header row"}
	}
	for i, col := range records[0] {
		if col != Header[i] {
			return nil, &SchemaError{
				Path:   path,
				Detail: fmt.Sprintf("column %d is %q, want %q", i+1, col, Header[i]),
			}
		}
	}

	m := New()
	for _, rec := range records[1:] {
		if err := m.add(Row{
			SourceFile:     rec[0],
			Key:            rec[1],
			OriginalText:   rec[2],
			TranslatedText: rec[3],
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return m, nil
}

package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbukum/imageflow/logger"
)

// Store keeps workflow documents in a directory, one file per workflow,
// named by a slug of the document name.
type Store struct {
	dir string
	log *logger.Logger
}

// Entry describes one stored workflow, for listings.
type Entry struct {
	// Path is the document file path.
	Path string
	// Name is the document's declared name.
	Name string
	// Doc is the loaded document.
	Doc *Document
}

// NewStore opens (creating if needed) a workflow directory.
func NewStore(dir string, log *logger.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("workflow: resolve store directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("workflow: create store directory: %w", err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Store{dir: abs, log: log.WithComponent("workflow-store")}, nil
}

// Dir returns the absolute store directory.
func (s *Store) Dir() string { return s.dir }

// Save validates and writes the document. The file name is the slugged
// document name; when another document already owns that slug, a numeric
// suffix is added. Saving the same document name again overwrites its
// file. Returns the path written.
func (s *Store) Save(doc *Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	slug := slugify(doc.Name)
	for i := 1; i <= 100; i++ {
		name := slug
		if i > 1 {
			name = fmt.Sprintf("%s-%d", slug, i)
		}
		path := filepath.Join(s.dir, name+".json")

		existing, err := Load(path)
		switch {
		case err != nil && os.IsNotExist(err):
			// Free slot.
		case err != nil:
			// Unreadable or foreign file owns the slot; do not clobber it.
			s.log.Warn("skipping unreadable workflow file", logger.Fields(
				logger.FieldPath, path,
				logger.FieldError, err.Error(),
			))
			continue
		case existing.Name != doc.Name:
			continue
		}

		if err := doc.Save(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("workflow: no free file name for %q after 100 attempts", doc.Name)
}

// List loads every document in the store, newest first by update time.
// Unreadable files are skipped with a warning so one corrupt document
// cannot hide the rest.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("workflow: read store directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if _, err := formatForPath(de.Name()); err != nil {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		doc, err := Load(path)
		if err != nil {
			s.log.Warn("skipping unreadable workflow file", logger.Fields(
				logger.FieldPath, path,
				logger.FieldError, err.Error(),
			))
			continue
		}
		entries = append(entries, Entry{Path: path, Name: doc.Name, Doc: doc})
	}

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Doc.Metadata.UpdatedAt, entries[j].Doc.Metadata.UpdatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Load resolves a stored workflow by file name (with or without
// extension) and loads it.
func (s *Store) Load(name string) (*Document, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Delete removes a stored workflow file.
func (s *Store) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("workflow: delete %s: %w", path, err)
	}
	return nil
}

// resolve maps a bare name to a file in the store, trying the supported
// extensions when none is given.
func (s *Store) resolve(name string) (string, error) {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = []string{name + ".json", name + ".yml", name + ".yaml"}
	}
	for _, c := range candidates {
		path := filepath.Join(s.dir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("workflow: no stored workflow named %q", name)
}

// slugify turns a document name into a safe lowercase file name.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "workflow"
	}
	return slug
}

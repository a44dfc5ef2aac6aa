package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func storedDoc(name string, updated time.Time) *Document {
	return &Document{
		Version:  DocumentVersion,
		Name:     name,
		Metadata: Metadata{CreatedAt: updated, UpdatedAt: updated},
		Nodes:    []NodeDef{{ID: "src", Type: "source"}},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := testStore(t)
	path, err := s.Save(storedDoc("My Flow", time.Now()))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "my-flow.json" {
		t.Fatalf("expected slugged file name, got %s", filepath.Base(path))
	}

	doc, err := s.Load("my-flow")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Name != "My Flow" {
		t.Fatalf("expected original name preserved, got %q", doc.Name)
	}
}

func TestStore_SaveOverwritesSameName(t *testing.T) {
	s := testStore(t)
	doc := storedDoc("flow", time.Now())
	if _, err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.Description = "second revision"
	path, err := s.Save(doc)
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if filepath.Base(path) != "flow.json" {
		t.Fatalf("expected same file, got %s", filepath.Base(path))
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Doc.Description != "second revision" {
		t.Fatalf("expected overwrite, got %q", entries[0].Doc.Description)
	}
}

func TestStore_SlugCollisionGetsSuffix(t *testing.T) {
	s := testStore(t)
	if _, err := s.Save(storedDoc("My Flow", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, err := s.Save(storedDoc("my flow", time.Now()))
	if err != nil {
		t.Fatalf("save collision: %v", err)
	}
	if filepath.Base(path) != "my-flow-2.json" {
		t.Fatalf("expected suffixed file name, got %s", filepath.Base(path))
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both workflows stored, got %d", len(entries))
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"oldest", "middle", "newest"} {
		if _, err := s.Save(storedDoc(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, entries[i].Name)
		}
	}
}

func TestStore_ListSkipsUnreadable(t *testing.T) {
	s := testStore(t)
	if _, err := s.Save(storedDoc("good", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	corrupt := filepath.Join(s.Dir(), "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "good" {
		t.Fatalf("expected only the readable workflow, got %+v", entries)
	}
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	if _, err := s.Save(storedDoc("doomed", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete("doomed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load("doomed"); err == nil {
		t.Fatal("expected load to fail after delete")
	}
	if err := s.Delete("doomed"); err == nil {
		t.Fatal("expected delete of missing workflow to fail")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Flow", "my-flow"},
		{"  padded  ", "padded"},
		{"Uno/Dos\\Tres", "uno-dos-tres"},
		{"already-slugged", "already-slugged"},
		{"___", "workflow"},
		{"", "workflow"},
		{"Grayscale #2", "grayscale-2"},
	}
	for _, tc := range tests {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q): expected %q, got %q", tc.in, got, tc.want)
		}
	}
}

package savedlists

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRepositoryRejectsDuplicateID(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	ctx := context.Background()
	params := CreateListParams{ID: "1", Name: "A", Names: []string{"Alice"}, CreatedAt: epoch}

	if _, err := repo.CreateList(ctx, params); err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if _, err := repo.CreateList(ctx, params); !errors.Is(err, ErrListExists) {
		t.Errorf("CreateList() duplicate error = %v, want ErrListExists", err)
	}
}

func TestFileRepositoryCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", DefaultFileName)
	repo := NewFileRepository(path)

	if _, err := repo.CreateList(context.Background(), CreateListParams{ID: "1", Name: "A", Names: []string{"Alice"}, CreatedAt: epoch}); err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestFileRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewFileRepository(path)
	if _, err := repo.ListLists(context.Background()); err == nil {
		t.Error("expected a parse error")
	}
}

func TestFileRepositoryOrdersByNumericID(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFileName))
	ctx := context.Background()

	for _, id := range []string{"1000", "999", "1001"} {
		if _, err := repo.CreateList(ctx, CreateListParams{ID: id, Name: id, Names: []string{"x"}, CreatedAt: epoch}); err != nil {
			t.Fatalf("CreateList(%s) error = %v", id, err)
		}
	}

	lists, err := repo.ListLists(ctx)
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	want := []string{"999", "1000", "1001"}
	for i, l := range lists {
		if l.ID != want[i] {
			t.Errorf("lists[%d].ID = %s, want %s", i, l.ID, want[i])
		}
	}
}

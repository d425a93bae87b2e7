package savedlists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/maelkermann/plouf-plouf/go/internal/models"
)

// DefaultFileName is the file the saved lists live in when no database is configured
const DefaultFileName = "ploufPloufSavedLists.json"

// FileRepository keeps every saved list in one JSON array file
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a repository backed by path. The file is
// created on first write.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// CreateList appends a list, failing with ErrListExists on an id clash
func (r *FileRepository) CreateList(ctx context.Context, params CreateListParams) (*models.NameList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		if l.ID == params.ID {
			return nil, ErrListExists
		}
	}

	list := models.NameList{
		ID:        params.ID,
		Name:      params.Name,
		Names:     append([]string{}, params.Names...),
		CreatedAt: params.CreatedAt.UTC(),
	}
	if err := r.store(append(lists, list)); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetList retrieves a list by id
func (r *FileRepository) GetList(ctx context.Context, id string) (*models.NameList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, ErrListNotFound
}

// ListLists returns all lists ordered by id
func (r *FileRepository) ListLists(ctx context.Context) ([]models.NameList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lists, func(i, j int) bool {
		return idLess(lists[i].ID, lists[j].ID)
	})
	return lists, nil
}

// DeleteList removes a list by id
func (r *FileRepository) DeleteList(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists, err := r.load()
	if err != nil {
		return err
	}
	kept := lists[:0]
	found := false
	for _, l := range lists {
		if l.ID == id {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return ErrListNotFound
	}
	return r.store(kept)
}

func (r *FileRepository) load() ([]models.NameList, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.NameList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved lists: %w", err)
	}

	var lists []models.NameList
	if len(data) == 0 {
		return []models.NameList{}, nil
	}
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parse saved lists: %w", err)
	}
	return lists, nil
}

// store replaces the file through a rename so readers never see a partial write
func (r *FileRepository) store(lists []models.NameList) error {
	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal saved lists: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create saved lists dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".savedlists-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write saved lists: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace saved lists: %w", err)
	}
	return nil
}

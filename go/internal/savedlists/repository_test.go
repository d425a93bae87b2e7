package savedlists

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/maelkermann/plouf-plouf/go/internal/savedlists/db"
	"github.com/sqlc-dev/pqtype"
)

type fakeQuerier struct {
	rows    map[string]db.NameList
	err     error
}

func (f *fakeQuerier) CreateNameList(ctx context.Context, arg db.CreateNameListParams) (db.NameList, error) {
	row := db.NameList(arg)
	f.rows[arg.ID] = row
	return row, nil
}

func (f *fakeQuerier) GetNameList(ctx context.Context, id string) (db.NameList, error) {
	if f.err != nil {
		return db.NameList{}, f.err
	}
	row, ok := f.rows[id]
	if !ok {
		return db.NameList{}, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeQuerier) NameListExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeQuerier) ListNameLists(ctx context.Context) ([]db.NameList, error) {
	var out []db.NameList
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeQuerier) DeleteNameList(ctx context.Context, id string) (int64, error) {
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func row(id, name, names string) db.NameList {
	return db.NameList{
		ID:        id,
		Name:      name,
		Names:     pqtype.NullRawMessage{RawMessage: []byte(names), Valid: names != ""},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newFakeRepo(rows ...db.NameList) (*PostgresRepository, *fakeQuerier) {
	q := &fakeQuerier{rows: make(map[string]db.NameList)}
	for _, r := range rows {
		q.rows[r.ID] = r
	}
	return &PostgresRepository{queries: q}, q
}

func TestPostgresRepositoryGetList(t *testing.T) {
	repo, q := newFakeRepo(row("1", "Team", `["Alice","Bob"]`))
	ctx := context.Background()

	list, err := repo.GetList(ctx, "1")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if list.Name != "Team" || len(list.Names) != 2 || list.Names[1] != "Bob" {
		t.Errorf("GetList() = %+v", list)
	}

	if _, err := repo.GetList(ctx, "2"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("GetList(missing) error = %v, want ErrListNotFound", err)
	}

	q.err = errors.New("connection reset")
	if _, err := repo.GetList(ctx, "1"); err == nil || errors.Is(err, ErrListNotFound) {
		t.Errorf("GetList() with db failure error = %v", err)
	}
}

func TestPostgresRepositoryListOrdersByID(t *testing.T) {
	repo, _ := newFakeRepo(
		row("1000", "b", `["x"]`),
		row("999", "a", `["y"]`),
		row("1001", "c", ""),
	)

	lists, err := repo.ListLists(context.Background())
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	want := []string{"999", "1000", "1001"}
	for i, l := range lists {
		if l.ID != want[i] {
			t.Errorf("lists[%d].ID = %s, want %s", i, l.ID, want[i])
		}
	}
	if lists[2].Names == nil || len(lists[2].Names) != 0 {
		t.Errorf("NULL names should map to an empty slice, got %#v", lists[2].Names)
	}
}

func TestPostgresRepositoryDeleteList(t *testing.T) {
	repo, _ := newFakeRepo(row("1", "Team", `["Alice"]`))
	ctx := context.Background()

	if err := repo.DeleteList(ctx, "1"); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	if err := repo.DeleteList(ctx, "1"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("second DeleteList() error = %v, want ErrListNotFound", err)
	}
}

func TestDBNameListToModelRejectsBadJSON(t *testing.T) {
	if _, err := dbNameListToModel(row("1", "x", `{"not":"a list"}`)); err == nil {
		t.Error("expected an error")
	}
}

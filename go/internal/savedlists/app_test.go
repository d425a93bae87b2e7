package savedlists

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *clockwork.FakeClock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	fc := clockwork.NewFakeClockAt(epoch)
	return NewApp(NewFileRepository(path), fc), fc, path
}

func TestSaveListValidation(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     SaveListRequest
		wantErr error
	}{
		{name: "missing name", req: SaveListRequest{Name: "  ", Names: []string{"Alice"}}, wantErr: ErrEmptyListName},
		{name: "no names", req: SaveListRequest{Name: "Team"}, wantErr: ErrEmptyList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.SaveList(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveList() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveListUsesTimestampID(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	list, err := app.SaveList(ctx, SaveListRequest{Name: " Team A ", Names: []string{"Alice", "Bob"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}
	if want := strconv.FormatInt(epoch.UnixMilli(), 10); list.ID != want {
		t.Errorf("ID = %q, want %q", list.ID, want)
	}
	if list.Name != "Team A" {
		t.Errorf("Name = %q, want trimmed name", list.Name)
	}
	if !list.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", list.CreatedAt, epoch)
	}
}

func TestSaveListSameMillisecond(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	first, err := app.SaveList(ctx, SaveListRequest{Name: "One", Names: []string{"Alice"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}
	second, err := app.SaveList(ctx, SaveListRequest{Name: "Two", Names: []string{"Bob"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("both lists got id %q", first.ID)
	}

	lists, err := app.ListLists(ctx)
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	if len(lists) != 2 || lists[0].Name != "One" || lists[1].Name != "Two" {
		t.Errorf("ListLists() = %+v, want One then Two", lists)
	}
}

func TestSavedListsPersistAcrossRepositories(t *testing.T) {
	app, fc, path := newTestApp(t)
	ctx := context.Background()

	saved, err := app.SaveList(ctx, SaveListRequest{Name: "Lunch", Names: []string{"Alice", "Bob", "Carol"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}

	reopened := NewApp(NewFileRepository(path), fc)
	got, err := reopened.GetList(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if !reflect.DeepEqual(got.Names, saved.Names) || got.Name != saved.Name {
		t.Errorf("GetList() = %+v, want %+v", got, saved)
	}
}

func TestDeleteList(t *testing.T) {
	app, fc, _ := newTestApp(t)
	ctx := context.Background()

	a, err := app.SaveList(ctx, SaveListRequest{Name: "A", Names: []string{"Alice"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}
	fc.Advance(time.Second)
	b, err := app.SaveList(ctx, SaveListRequest{Name: "B", Names: []string{"Bob"}})
	if err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}

	if err := app.DeleteList(ctx, a.ID); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	if _, err := app.GetList(ctx, a.ID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("GetList() after delete error = %v, want ErrListNotFound", err)
	}
	if err := app.DeleteList(ctx, a.ID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("second DeleteList() error = %v, want ErrListNotFound", err)
	}

	lists, err := app.ListLists(ctx)
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	if len(lists) != 1 || lists[0].ID != b.ID {
		t.Errorf("ListLists() = %+v, want only %s", lists, b.ID)
	}
}

func TestListListsEmpty(t *testing.T) {
	app, _, _ := newTestApp(t)

	lists, err := app.ListLists(context.Background())
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	if lists == nil || len(lists) != 0 {
		t.Errorf("ListLists() = %#v, want empty slice", lists)
	}
}

func TestIDLess(t *testing.T) {
	if !idLess("999", "1000") {
		t.Error("ids should compare numerically")
	}
	if idLess("1000", "999") {
		t.Error("ids should compare numerically")
	}
	if !idLess("abc", "abd") {
		t.Error("non-numeric ids should fall back to string order")
	}
}

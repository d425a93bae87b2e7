package savedlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/maelkermann/plouf-plouf/go/internal/savedlists/db"
	"github.com/maelkermann/plouf-plouf/go/internal/sqlutil"
)

const uniqueViolation = "23505"

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateNameList(ctx context.Context, arg db.CreateNameListParams) (db.NameList, error)
	GetNameList(ctx context.Context, id string) (db.NameList, error)
	NameListExists(ctx context.Context, id string) (bool, error)
	ListNameLists(ctx context.Context) ([]db.NameList, error)
	DeleteNameList(ctx context.Context, id string) (int64, error)
}

// PostgresRepository stores saved lists in Postgres
type PostgresRepository struct {
	conn    *sql.DB
	queries Querier
}

// NewPostgresRepository creates a repository over an open database
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		conn:    conn,
		queries: db.New(conn),
	}
}

// EnsureSchema creates the saved list table if it is missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.conn.ExecContext(ctx, db.Schema); err != nil {
		return fmt.Errorf("failed to create name_lists table: %w", err)
	}
	return nil
}

// CreateList inserts a list inside a transaction, failing with ErrListExists
// when the id is taken
func (r *PostgresRepository) CreateList(ctx context.Context, params CreateListParams) (*models.NameList, error) {
	names, err := sqlutil.ToNullJSON(params.Names)
	if err != nil {
		return nil, err
	}

	var row db.NameList
	err = sqlutil.Run(ctx, r.conn, func(tx *sql.Tx) *db.Queries {
		return db.New(tx)
	}, func(q *db.Queries) error {
		exists, err := q.NameListExists(ctx, params.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrListExists
		}
		row, err = q.CreateNameList(ctx, db.CreateNameListParams{
			ID:        params.ID,
			Name:      params.Name,
			Names:     names,
			CreatedAt: params.CreatedAt.UTC(),
		})
		return err
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrListExists
		}
		if errors.Is(err, ErrListExists) {
			return nil, ErrListExists
		}
		return nil, fmt.Errorf("failed to create name list: %w", err)
	}

	return dbNameListToModel(row)
}

// GetList retrieves a list by id
func (r *PostgresRepository) GetList(ctx context.Context, id string) (*models.NameList, error) {
	row, err := r.queries.GetNameList(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get name list: %w", err)
	}
	return dbNameListToModel(row)
}

// ListLists returns all lists ordered by id
func (r *PostgresRepository) ListLists(ctx context.Context) ([]models.NameList, error) {
	rows, err := r.queries.ListNameLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list name lists: %w", err)
	}

	lists := make([]models.NameList, 0, len(rows))
	for _, row := range rows {
		list, err := dbNameListToModel(row)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	sort.SliceStable(lists, func(i, j int) bool {
		return idLess(lists[i].ID, lists[j].ID)
	})
	return lists, nil
}

// DeleteList removes a list by id
func (r *PostgresRepository) DeleteList(ctx context.Context, id string) error {
	n, err := r.queries.DeleteNameList(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete name list: %w", err)
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

func dbNameListToModel(row db.NameList) (*models.NameList, error) {
	names, err := sqlutil.FromNullStrings(row.Names)
	if err != nil {
		return nil, fmt.Errorf("name list %s: %w", row.ID, err)
	}
	return &models.NameList{
		ID:        row.ID,
		Name:      row.Name,
		Names:     names,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

// Schema creates the saved list table
const Schema = `
CREATE TABLE IF NOT EXISTS name_lists (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    names      JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DBTX is satisfied by *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type NameList struct {
	ID        string
	Name      string
	Names     pqtype.NullRawMessage
	CreatedAt time.Time
}

type CreateNameListParams struct {
	ID        string
	Name      string
	Names     pqtype.NullRawMessage
	CreatedAt time.Time
}

const createNameList = `
INSERT INTO name_lists (id, name, names, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, name, names, created_at
`

func (q *Queries) CreateNameList(ctx context.Context, arg CreateNameListParams) (NameList, error) {
	row := q.db.QueryRowContext(ctx, createNameList, arg.ID, arg.Name, arg.Names, arg.CreatedAt)
	var i NameList
	err := row.Scan(&i.ID, &i.Name, &i.Names, &i.CreatedAt)
	return i, err
}

const getNameList = `
SELECT id, name, names, created_at FROM name_lists WHERE id = $1
`

func (q *Queries) GetNameList(ctx context.Context, id string) (NameList, error) {
	row := q.db.QueryRowContext(ctx, getNameList, id)
	var i NameList
	err := row.Scan(&i.ID, &i.Name, &i.Names, &i.CreatedAt)
	return i, err
}

const nameListExists = `
SELECT EXISTS (SELECT 1 FROM name_lists WHERE id = $1)
`

func (q *Queries) NameListExists(ctx context.Context, id string) (bool, error) {
	row := q.db.QueryRowContext(ctx, nameListExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listNameLists = `
SELECT id, name, names, created_at FROM name_lists ORDER BY created_at, id
`

func (q *Queries) ListNameLists(ctx context.Context) ([]NameList, error) {
	rows, err := q.db.QueryContext(ctx, listNameLists)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []NameList
	for rows.Next() {
		var i NameList
		if err := rows.Scan(&i.ID, &i.Name, &i.Names, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteNameList = `
DELETE FROM name_lists WHERE id = $1
`

func (q *Queries) DeleteNameList(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteNameList, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

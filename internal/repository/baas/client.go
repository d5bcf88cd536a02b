// Package baas is the table-name-addressed CRUD contract of the new backend
// and its Supabase implementations.
package baas

import (
	"context"
	"errors"
)

// Row is one record as the backend returns it, keyed by column name.
type Row map[string]any

type Op string

const (
	OpEq  Op = "eq"
	OpIn  Op = "in"
	OpGte Op = "gte"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

func In(column string, values ...any) Filter { return Filter{Column: column, Op: OpIn, Value: values} }

func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }

type Query struct {
	Filters []Filter
	Order   string
	Desc    bool
	Limit   int
}

// Where builds a query from filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(column string, desc bool) Query {
	q.Order = column
	q.Desc = desc
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

var (
	ErrUniqueViolation     = errors.New("baas: unique violation")
	ErrForeignKeyViolation = errors.New("baas: foreign key violation")
)

// Client is implemented by every new-backend driver. Each method is a single
// backend call; a cancelled context leaves no partial write.
type Client interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	// Upsert inserts rows, updating those whose onConflict column already
	// exists. It returns the number of rows written.
	Upsert(ctx context.Context, table string, rows []Row, onConflict string) (int, error)
	Update(ctx context.Context, table string, q Query, patch Row) (int, error)
	Delete(ctx context.Context, table string, q Query) (int, error)
}

// sqlStateError maps the SQLSTATE codes both drivers surface.
func sqlStateError(code string, err error) error {
	switch code {
	case "23505":
		return errors.Join(ErrUniqueViolation, err)
	case "23503":
		return errors.Join(ErrForeignKeyViolation, err)
	}
	return err
}

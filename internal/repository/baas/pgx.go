package baas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PgxClient serves the Client contract directly against the Supabase
// Postgres database. The connection role must bypass row level security.
type PgxClient struct {
	db *pgxpool.Pool
}

func NewPgxClient(db *pgxpool.Pool) *PgxClient {
	return &PgxClient{db: db}
}

func (c *PgxClient) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	sql, args := buildSelect(table, q)
	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(err)
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = normalizeRow(m)
	}
	return out, nil
}

func (c *PgxClient) Insert(ctx context.Context, table string, row Row) (Row, error) {
	sql, args := buildInsert(table, []Row{row}, "")
	rows, err := c.db.Query(ctx, sql+" RETURNING *", args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(err)
	}
	return normalizeRow(m), nil
}

func (c *PgxClient) Upsert(ctx context.Context, table string, rows []Row, onConflict string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql, args := buildInsert(table, rows, onConflict)
	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (c *PgxClient) Update(ctx context.Context, table string, q Query, patch Row) (int, error) {
	if len(patch) == 0 {
		return 0, fmt.Errorf("baas: empty update on %s", table)
	}
	var b argList
	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = pq.QuoteIdentifier(col) + " = " + b.add(patch[col])
	}
	sql := "UPDATE " + pq.QuoteIdentifier(table) + " SET " + strings.Join(sets, ", ") + b.where(q.Filters)
	tag, err := c.db.Exec(ctx, sql, b.args...)
	if err != nil {
		return 0, mapPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (c *PgxClient) Delete(ctx context.Context, table string, q Query) (int, error) {
	var b argList
	sql := "DELETE FROM " + pq.QuoteIdentifier(table) + b.where(q.Filters)
	tag, err := c.db.Exec(ctx, sql, b.args...)
	if err != nil {
		return 0, mapPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

type argList struct {
	args []any
}

func (b *argList) add(v any) string {
	b.args = append(b.args, encodeArg(v))
	return "$" + strconv.Itoa(len(b.args))
}

func (b *argList) where(filters []Filter) string {
	if len(filters) == 0 {
		return ""
	}
	conds := make([]string, len(filters))
	for i, f := range filters {
		col := pq.QuoteIdentifier(f.Column)
		switch f.Op {
		case OpIn:
			values, _ := f.Value.([]any)
			if len(values) == 0 {
				conds[i] = "FALSE"
				continue
			}
			ph := make([]string, len(values))
			for j, v := range values {
				ph[j] = b.add(v)
			}
			conds[i] = col + " IN (" + strings.Join(ph, ", ") + ")"
		case OpGte:
			conds[i] = col + " >= " + b.add(f.Value)
		default:
			if f.Value == nil {
				conds[i] = col + " IS NULL"
				continue
			}
			conds[i] = col + " = " + b.add(f.Value)
		}
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func buildSelect(table string, q Query) (string, []any) {
	var b argList
	sql := "SELECT * FROM " + pq.QuoteIdentifier(table) + b.where(q.Filters)
	if q.Order != "" {
		sql += " ORDER BY " + pq.QuoteIdentifier(q.Order)
		if q.Desc {
			sql += " DESC"
		}
	}
	if q.Limit > 0 {
		sql += " LIMIT " + strconv.Itoa(q.Limit)
	}
	return sql, b.args
}

// buildInsert writes a multi-row insert over the union of the rows' columns;
// a column missing from a row is sent as NULL.
func buildInsert(table string, rows []Row, onConflict string) (string, []any) {
	colSet := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			colSet[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = pq.QuoteIdentifier(col)
	}

	var b argList
	tuples := make([]string, len(rows))
	for i, r := range rows {
		ph := make([]string, len(cols))
		for j, col := range cols {
			ph[j] = b.add(r[col])
		}
		tuples[i] = "(" + strings.Join(ph, ", ") + ")"
	}

	sql := "INSERT INTO " + pq.QuoteIdentifier(table) + " (" + strings.Join(quoted, ", ") + ") VALUES " + strings.Join(tuples, ", ")
	if onConflict == "" {
		return sql, b.args
	}

	var sets []string
	for _, col := range cols {
		if col == onConflict {
			continue
		}
		q := pq.QuoteIdentifier(col)
		sets = append(sets, q+" = EXCLUDED."+q)
	}
	sql += " ON CONFLICT (" + pq.QuoteIdentifier(onConflict) + ")"
	if len(sets) == 0 {
		return sql + " DO NOTHING", b.args
	}
	return sql + " DO UPDATE SET " + strings.Join(sets, ", "), b.args
}

// encodeArg sends nested objects and arrays as JSON text so json/jsonb
// columns accept them under the simple query protocol.
func encodeArg(v any) any {
	switch t := v.(type) {
	case nil, string, []byte, bool, time.Time, *time.Time:
		return v
	case json.RawMessage:
		return string(t)
	case uuid.UUID:
		return t.String()
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		raw, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(raw)
	}
	return v
}

func normalizeRow(m map[string]any) Row {
	for k, v := range m {
		switch t := v.(type) {
		case [16]byte:
			m[k] = uuid.UUID(t).String()
		case pgtype.Numeric:
			if f, err := t.Float64Value(); err == nil && f.Valid {
				m[k] = f.Float64
			} else {
				m[k] = nil
			}
		}
	}
	return Row(m)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlStateError(pgErr.Code, err)
	}
	return err
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

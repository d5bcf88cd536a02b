// Package testutil holds backends for tests: an in-memory new-backend client
// and an in-memory sqlite legacy database.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-recruitment-datalayer/internal/repository/baas"
)

// ForeignKey declares that Column must match RefColumn of some row in
// RefTable when it is not null.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// uniqueKey is a unique constraint, partial when where is set: only rows
// matching every where value take part.
type uniqueKey struct {
	columns []string
	where   baas.Row
}

// MemoryBackend is an in-memory baas.Client. Rows are stored as they would
// come back over the REST API (JSON-decoded), unique and foreign key
// constraints are enforced, and every call is atomic.
type MemoryBackend struct {
	mu      sync.Mutex
	tables  map[string][]baas.Row
	uniques map[string][]uniqueKey
	refs    map[string][]ForeignKey
	fail    map[string]error
	calls   map[string]int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables:  map[string][]baas.Row{},
		uniques: map[string][]uniqueKey{},
		refs:    map[string][]ForeignKey{},
		fail:    map[string]error{},
		calls:   map[string]int{},
	}
}

// NewRecruitmentBackend returns a MemoryBackend carrying the constraints of
// the new backend's schema.
func NewRecruitmentBackend() *MemoryBackend {
	m := NewMemoryBackend()
	m.Unique("agencies", "id")
	m.Unique("agencies", "slug")
	m.Unique("candidates", "id")
	m.Unique("candidates", "email")
	m.Unique("candidates", "username")
	m.Unique("candidate_profiles", "candidate_id")
	m.Unique("jobs", "id")
	m.Unique("jobs", "slug")
	m.Unique("resumes", "id")
	m.Unique("resumes", "slug")
	m.UniqueWhere("resumes", baas.Row{"is_primary": true}, "candidate_id")
	m.Unique("applications", "id")
	m.Unique("applications", "candidate_id", "job_id")
	m.Unique("assessment_sessions", "id")

	m.Reference("candidate_profiles", ForeignKey{Column: "candidate_id", RefTable: "candidates", RefColumn: "id"})
	m.Reference("jobs", ForeignKey{Column: "agency_id", RefTable: "agencies", RefColumn: "id"})
	m.Reference("resumes", ForeignKey{Column: "candidate_id", RefTable: "candidates", RefColumn: "id"})
	m.Reference("applications", ForeignKey{Column: "candidate_id", RefTable: "candidates", RefColumn: "id"})
	m.Reference("applications", ForeignKey{Column: "job_id", RefTable: "jobs", RefColumn: "id"})
	m.Reference("applications", ForeignKey{Column: "resume_id", RefTable: "resumes", RefColumn: "id"})
	m.Reference("assessment_sessions", ForeignKey{Column: "candidate_id", RefTable: "candidates", RefColumn: "id"})
	return m
}

// Unique adds a unique constraint over columns. Rows with a null in any of
// the columns never conflict.
func (m *MemoryBackend) Unique(table string, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uniques[table] = append(m.uniques[table], uniqueKey{columns: columns})
}

// UniqueWhere adds a partial unique constraint over the rows matching where.
func (m *MemoryBackend) UniqueWhere(table string, where baas.Row, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uniques[table] = append(m.uniques[table], uniqueKey{columns: columns, where: where})
}

func (m *MemoryBackend) Reference(table string, fk ForeignKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[table] = append(m.refs[table], fk)
}

// FailTable makes every call against table return err until Heal is called.
func (m *MemoryBackend) FailTable(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[table] = err
}

func (m *MemoryBackend) Heal(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fail, table)
}

// Calls reports how many calls reached table.
func (m *MemoryBackend) Calls(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[table]
}

// Rows returns a copy of table's rows in insertion order.
func (m *MemoryBackend) Rows(table string) []baas.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]baas.Row, len(m.tables[table]))
	for i, r := range m.tables[table] {
		out[i] = copyRow(r)
	}
	return out
}

func (m *MemoryBackend) Select(ctx context.Context, table string, q baas.Query) ([]baas.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, table); err != nil {
		return nil, err
	}

	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	var out []baas.Row
	for _, r := range m.tables[table] {
		if matches(r, filters) {
			out = append(out, copyRow(r))
		}
	}
	if q.Order != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][q.Order], out[j][q.Order])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryBackend) Insert(ctx context.Context, table string, row baas.Row) (baas.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, table); err != nil {
		return nil, err
	}

	r, err := normalizeRow(row)
	if err != nil {
		return nil, err
	}
	rows := append(cloneRows(m.tables[table]), r)
	if err := m.check(table, rows, len(rows)-1); err != nil {
		return nil, err
	}
	m.tables[table] = rows
	return copyRow(r), nil
}

func (m *MemoryBackend) Upsert(ctx context.Context, table string, rows []baas.Row, onConflict string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, table); err != nil {
		return 0, err
	}

	next := cloneRows(m.tables[table])
	for _, row := range rows {
		r, err := normalizeRow(row)
		if err != nil {
			return 0, err
		}
		idx := -1
		if key, ok := r[onConflict]; ok && key != nil {
			for i, existing := range next {
				if equal(existing[onConflict], key) {
					idx = i
					break
				}
			}
		}
		if idx >= 0 {
			for k, v := range r {
				next[idx][k] = v
			}
		} else {
			next = append(next, r)
			idx = len(next) - 1
		}
		if err := m.check(table, next, idx); err != nil {
			return 0, err
		}
	}
	m.tables[table] = next
	return len(rows), nil
}

func (m *MemoryBackend) Update(ctx context.Context, table string, q baas.Query, patch baas.Row) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, table); err != nil {
		return 0, err
	}

	p, err := normalizeRow(patch)
	if err != nil {
		return 0, err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return 0, err
	}
	next := cloneRows(m.tables[table])
	n := 0
	for i, r := range next {
		if !matches(r, filters) {
			continue
		}
		for k, v := range p {
			r[k] = v
		}
		if err := m.check(table, next, i); err != nil {
			return 0, err
		}
		n++
	}
	m.tables[table] = next
	return n, nil
}

func (m *MemoryBackend) Delete(ctx context.Context, table string, q baas.Query) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, table); err != nil {
		return 0, err
	}

	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return 0, err
	}
	var kept []baas.Row
	for _, r := range m.tables[table] {
		if !matches(r, filters) {
			kept = append(kept, r)
		}
	}
	n := len(m.tables[table]) - len(kept)
	m.tables[table] = kept
	return n, nil
}

func (m *MemoryBackend) enter(ctx context.Context, table string) error {
	m.calls[table]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.fail[table]
}

// check validates rows[idx] against the table's constraints.
func (m *MemoryBackend) check(table string, rows []baas.Row, idx int) error {
	row := rows[idx]
	for _, key := range m.uniques[table] {
		cols := key.columns
		if hasNull(row, cols) || !matchesAll(row, key.where) {
			continue
		}
		for i, other := range rows {
			if i == idx || hasNull(other, cols) || !matchesAll(other, key.where) {
				continue
			}
			same := true
			for _, c := range cols {
				if !equal(row[c], other[c]) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: %s (%s)", baas.ErrUniqueViolation, table, strings.Join(cols, ", "))
			}
		}
	}
	for _, fk := range m.refs[table] {
		v := row[fk.Column]
		if v == nil {
			continue
		}
		found := false
		for _, parent := range m.tables[fk.RefTable] {
			if equal(parent[fk.RefColumn], v) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s.%s = %v has no %s row", baas.ErrForeignKeyViolation, table, fk.Column, v, fk.RefTable)
		}
	}
	return nil
}

// normalizeRow round-trips through JSON so stored values have the types a
// REST client would decode.
func normalizeRow(row baas.Row) (baas.Row, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var out baas.Row
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func normalizeFilters(filters []baas.Filter) ([]baas.Filter, error) {
	out := make([]baas.Filter, len(filters))
	for i, f := range filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		out[i] = baas.Filter{Column: f.Column, Op: f.Op, Value: v}
	}
	return out, nil
}

func matches(r baas.Row, filters []baas.Filter) bool {
	for _, f := range filters {
		v := r[f.Column]
		switch f.Op {
		case baas.OpIn:
			values, _ := f.Value.([]any)
			hit := false
			for _, candidate := range values {
				if equal(v, candidate) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		case baas.OpGte:
			if v == nil || compare(v, f.Value) < 0 {
				return false
			}
		default:
			if !equal(v, f.Value) {
				return false
			}
		}
	}
	return true
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return compare(a, b) == 0
}

// compare orders nulls first, then timestamps, numbers and finally the JSON
// text of anything else.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			ta, errA := time.Parse(time.RFC3339Nano, as)
			tb, errB := time.Parse(time.RFC3339Nano, bs)
			if errA == nil && errB == nil {
				return ta.Compare(tb)
			}
			return strings.Compare(as, bs)
		}
	}
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	ra, _ := json.Marshal(a)
	rb, _ := json.Marshal(b)
	return strings.Compare(string(ra), string(rb))
}

func matchesAll(r baas.Row, where baas.Row) bool {
	for col, v := range where {
		if !equal(r[col], v) {
			return false
		}
	}
	return true
}

func hasNull(r baas.Row, cols []string) bool {
	for _, c := range cols {
		if r[c] == nil {
			return true
		}
	}
	return false
}

func copyRow(r baas.Row) baas.Row {
	out, _ := normalizeRow(r)
	return out
}

func cloneRows(rows []baas.Row) []baas.Row {
	out := make([]baas.Row, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out
}

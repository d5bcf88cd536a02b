package adapter

import (
	"context"
	"errors"
	"fmt"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/internal/repository/legacy"
	"go-recruitment-datalayer/internal/schema"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/apperror"
	"go-recruitment-datalayer/pkg/logger"
	"go-recruitment-datalayer/pkg/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entity is satisfied by pointers to canonical entities.
type entity[T any] interface {
	*T
	Normalize()
}

// family runs canonical-keyed queries against either backend. Filters,
// ordering and patches are always expressed with canonical field names; the
// legacy path renames them through the family's mapping.
type family[T any, P entity[T]] struct {
	deps    Deps
	table   schema.Table
	mapping translator.Mapping
	log     *logger.Logger
}

func newFamily[T any, P entity[T]](deps Deps, f domain.Family) *family[T, P] {
	mapping, err := translator.For(f)
	if err != nil {
		panic(err)
	}
	deps = deps.withDefaults()
	return &family[T, P]{
		deps:    deps,
		table:   schema.MustLookup(f),
		mapping: mapping,
		log:     deps.Log.With("adapter", f.String()),
	}
}

func (f *family[T, P]) Family() domain.Family {
	return f.table.Family
}

// route picks the authoritative backend for this call.
func (f *family[T, P]) route() domain.Backend {
	if f.deps.Flags.IsMigrated(f.table.Family.String()) {
		return domain.BackendNew
	}
	return domain.BackendLegacy
}

func (f *family[T, P]) findOne(ctx context.Context, b domain.Backend, filters ...baas.Filter) (*T, error) {
	rows, err := f.findMany(ctx, b, baas.Where(filters...).WithLimit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (f *family[T, P]) findMany(ctx context.Context, b domain.Backend, q baas.Query) ([]T, error) {
	if b == domain.BackendNew {
		if f.deps.Next == nil {
			return nil, f.unavailable(b)
		}
		rows, err := f.deps.Next.Select(ctx, f.table.NewTable, q)
		if err != nil {
			return nil, f.fail(b, "select", err)
		}
		out := make([]T, 0, len(rows))
		for _, r := range rows {
			v, err := translator.FromNew[T, P](r)
			if err != nil {
				return nil, apperror.New(apperror.KindShape,
					fmt.Sprintf("%s: new backend row does not match the canonical shape", f.table.Family), err)
			}
			out = append(out, *v)
		}
		return out, nil
	}

	if f.deps.Legacy == nil {
		return nil, f.unavailable(b)
	}
	where, err := f.legacyWhere(q.Filters)
	if err != nil {
		return nil, err
	}
	tx := f.deps.Legacy.WithContext(ctx).Table(f.table.LegacyTable)
	if len(where.Exprs) > 0 {
		tx = tx.Clauses(where)
	}
	if q.Order != "" {
		col, err := f.mapping.LegacyColumn(q.Order)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, f.fail(b, "select", err)
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := translator.FromLegacy[T, P](f.mapping, r)
		if err != nil {
			var shape *apperror.ShapeError
			if errors.As(err, &shape) {
				f.log.Warn("legacy row needs backfill", "id", shape.ID, "field", shape.Field)
			}
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *family[T, P]) insert(ctx context.Context, b domain.Backend, v *T) error {
	canonical, err := translator.Encode(v)
	if err != nil {
		return err
	}

	if b == domain.BackendNew {
		if f.deps.Next == nil {
			return f.unavailable(b)
		}
		if _, err := f.deps.Next.Insert(ctx, f.table.NewTable, f.newRow(canonical)); err != nil {
			return f.fail(b, "insert", err)
		}
		return nil
	}

	if f.deps.Legacy == nil {
		return f.unavailable(b)
	}
	row, err := translator.ToLegacyWrite(f.mapping, canonical)
	if err != nil {
		return apperror.Validation(err.Error(), err)
	}
	if err := f.deps.Legacy.WithContext(ctx).Table(f.table.LegacyTable).Create(row).Error; err != nil {
		return f.fail(b, "insert", err)
	}
	return nil
}

// update applies a canonical patch to every matching row and reports how
// many rows it touched.
func (f *family[T, P]) update(ctx context.Context, b domain.Backend, filters []baas.Filter, patch map[string]any) (int64, error) {
	if b == domain.BackendNew {
		if f.deps.Next == nil {
			return 0, f.unavailable(b)
		}
		n, err := f.deps.Next.Update(ctx, f.table.NewTable, baas.Where(filters...), f.newRow(patch))
		if err != nil {
			return 0, f.fail(b, "update", err)
		}
		return int64(n), nil
	}

	if f.deps.Legacy == nil {
		return 0, f.unavailable(b)
	}
	where, err := f.legacyWhere(filters)
	if err != nil {
		return 0, err
	}
	row, err := translator.ToLegacyWrite(f.mapping, patch)
	if err != nil {
		return 0, apperror.Validation(err.Error(), err)
	}
	if len(row) == 0 {
		return 0, nil
	}
	res := f.deps.Legacy.WithContext(ctx).Table(f.table.LegacyTable).Clauses(where).Updates(row)
	if res.Error != nil {
		return 0, f.fail(b, "update", res.Error)
	}
	return res.RowsAffected, nil
}

func (f *family[T, P]) remove(ctx context.Context, b domain.Backend, filters ...baas.Filter) (int64, error) {
	if b == domain.BackendNew {
		if f.deps.Next == nil {
			return 0, f.unavailable(b)
		}
		n, err := f.deps.Next.Delete(ctx, f.table.NewTable, baas.Where(filters...))
		if err != nil {
			return 0, f.fail(b, "delete", err)
		}
		return int64(n), nil
	}

	if f.deps.Legacy == nil {
		return 0, f.unavailable(b)
	}
	where, err := f.legacyWhere(filters)
	if err != nil {
		return 0, err
	}
	res := f.deps.Legacy.WithContext(ctx).Clauses(where).Delete(legacy.ModelFor(f.table.Family))
	if res.Error != nil {
		return 0, f.fail(b, "delete", res.Error)
	}
	return res.RowsAffected, nil
}

// Export reads the whole family, or the rows created at or after opts.Since,
// from the authoritative backend.
func (f *family[T, P]) Export(ctx context.Context, opts domain.ListOptions) ([]any, error) {
	q := baas.Query{}.OrderBy("created_at", false)
	if opts.Since != nil {
		q.Filters = append(q.Filters, baas.Gte("created_at", opts.Since.UTC()))
	}
	rows, err := f.findMany(ctx, f.route(), q)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out, nil
}

// FetchFrom reads one row by its key from the named backend, bypassing the
// resolver, and returns it in canonical form. A missing row is (nil, nil).
func (f *family[T, P]) FetchFrom(ctx context.Context, b domain.Backend, id string) (map[string]any, error) {
	v, err := f.findOne(ctx, b, baas.Eq(f.table.ConflictKey, id))
	if err != nil || v == nil {
		return nil, err
	}
	return translator.Encode(v)
}

func (f *family[T, P]) validate(v *T) error {
	if err := f.deps.Validate.Struct(v); err != nil {
		return apperror.Validation(fmt.Sprintf("%s: %s", f.table.Family, validation.Summary(err)), err)
	}
	return nil
}

// newRow drops derived fields, which are recomputed on every read.
func (f *family[T, P]) newRow(canonical map[string]any) baas.Row {
	row := make(baas.Row, len(canonical))
	for k, v := range canonical {
		row[k] = v
	}
	for _, d := range f.mapping.Derived {
		delete(row, d)
	}
	return row
}

func (f *family[T, P]) legacyWhere(filters []baas.Filter) (clause.Where, error) {
	where := clause.Where{Exprs: make([]clause.Expression, 0, len(filters))}
	for _, flt := range filters {
		col, err := f.mapping.LegacyColumn(flt.Column)
		if err != nil {
			return where, err
		}
		column := clause.Column{Name: col}

		switch flt.Op {
		case baas.OpIn:
			values, _ := flt.Value.([]any)
			converted := make([]any, len(values))
			for i, v := range values {
				if converted[i], err = f.mapping.LegacyValue(flt.Column, v); err != nil {
					return where, apperror.Validation(err.Error(), err)
				}
			}
			where.Exprs = append(where.Exprs, clause.IN{Column: column, Values: converted})
		case baas.OpGte:
			v, err := f.mapping.LegacyValue(flt.Column, flt.Value)
			if err != nil {
				return where, apperror.Validation(err.Error(), err)
			}
			where.Exprs = append(where.Exprs, clause.Gte{Column: column, Value: v})
		default:
			v, err := f.mapping.LegacyValue(flt.Column, flt.Value)
			if err != nil {
				return where, apperror.Validation(err.Error(), err)
			}
			where.Exprs = append(where.Exprs, clause.Eq{Column: column, Value: v})
		}
	}
	return where, nil
}

// fail maps a backend error onto the shared taxonomy. Context errors pass
// through untouched.
func (f *family[T, P]) fail(b domain.Backend, op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, baas.ErrUniqueViolation):
		return apperror.Conflict(fmt.Sprintf("%s: %s conflicts with an existing row", f.table.Family, op), err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, baas.ErrForeignKeyViolation):
		return apperror.Validation(fmt.Sprintf("%s: %s references a missing row", f.table.Family, op), err)
	}
	f.log.Error("backend call failed", "backend", b, "op", op, "error", err)
	return apperror.BackendUnavailable(string(b), err)
}

func (f *family[T, P]) unavailable(b domain.Backend) error {
	return apperror.BackendUnavailable(string(b), fmt.Errorf("%s backend is not configured", b))
}

// owns fails with OwnershipViolation unless actingID is the owner.
func owns(actingID, ownerID, resource string) error {
	if actingID == "" || actingID != ownerID {
		return apperror.OwnershipViolation(actingID, resource)
	}
	return nil
}

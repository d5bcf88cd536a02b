// Package restore loads a backup artifact into the new backend in foreign
// key order.
package restore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-recruitment-datalayer/internal/backup"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/internal/schema"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/logger"
)

const DefaultBatchSize = 500

// ErrArtifactMismatch means the data document disagrees with its metadata;
// nothing is written.
var ErrArtifactMismatch = errors.New("restore: data document does not match metadata")

// Report is the outcome of one run. Errors is keyed by family; a family
// that failed midway reports the rows written before the failing batch.
type Report struct {
	Order         []string          `json:"order"`
	Restored      map[string]int    `json:"restored"`
	Errors        map[string]string `json:"errors"`
	TotalRestored int               `json:"total_restored"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

type Engine struct {
	target    baas.Client
	batchSize int
	log       *logger.Logger
	now       func() time.Time
}

func NewEngine(target baas.Client, batchSize int, log *logger.Logger) *Engine {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{target: target, batchSize: batchSize, log: log.With("component", "restore"), now: time.Now}
}

// Restore upserts every family of a on its conflict key, parents before
// children. Running it twice over the same artifact leaves the same rows.
// A failing family is recorded in the report and the run moves on; only an
// invalid artifact or cancellation returns an error.
func (e *Engine) Restore(ctx context.Context, a *backup.Artifact) (*Report, error) {
	if a == nil || a.Data == nil {
		return nil, backup.ErrDataMissing
	}
	if a.Metadata != nil {
		if err := a.Metadata.Verify(a.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArtifactMismatch, err)
		}
	} else {
		e.log.Warn("metadata document missing, restoring without provenance check")
	}

	report := &Report{
		Restored:  map[string]int{},
		Errors:    map[string]string{},
		StartedAt: e.now().UTC(),
	}

	var known []domain.Family
	for name := range a.Data {
		f := domain.Family(name)
		if _, ok := schema.Lookup(f); !ok {
			report.Errors[name] = "unknown family"
			continue
		}
		known = append(known, f)
	}
	order, err := schema.DependencyOrder(known)
	if err != nil {
		return nil, err
	}

	for _, f := range order {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = e.now().UTC()
			return report, err
		}
		report.Order = append(report.Order, f.String())

		n, err := e.restoreFamily(ctx, f, a.Data[f.String()])
		report.Restored[f.String()] = n
		report.TotalRestored += n
		if err != nil {
			e.log.Error("family restore failed", "family", f, "restored", n, "error", err)
			report.Errors[f.String()] = err.Error()
			continue
		}
		e.log.Info("family restored", "family", f, "rows", n)
	}

	report.FinishedAt = e.now().UTC()
	return report, nil
}

func (e *Engine) restoreFamily(ctx context.Context, f domain.Family, records []backup.Record) (int, error) {
	table := schema.MustLookup(f)
	mapping, err := translator.For(f)
	if err != nil {
		return 0, err
	}

	rows := make([]baas.Row, len(records))
	for i, rec := range records {
		row := make(baas.Row, len(rec))
		for k, v := range rec {
			row[k] = v
		}
		for _, d := range mapping.Derived {
			delete(row, d)
		}
		rows[i] = row
	}

	restored := 0
	for start := 0; start < len(rows); start += e.batchSize {
		batch := rows[start:min(start+e.batchSize, len(rows))]
		if _, err := e.target.Upsert(ctx, table.NewTable, batch, table.ConflictKey); err != nil {
			return restored, fmt.Errorf("batch at row %d: %w", start, err)
		}
		restored += len(batch)
	}
	return restored, nil
}

package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/schema"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type Engine struct {
	sources map[domain.Family]adapter.Source
	log     *logger.Logger
	fanOut  int
	now     func() time.Time
}

func NewEngine(sources map[domain.Family]adapter.Source, log *logger.Logger, fanOut int) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if fanOut < 1 {
		fanOut = 1
	}
	return &Engine{sources: sources, log: log.With("component", "backup"), fanOut: fanOut, now: time.Now}
}

// Snapshot exports families (all registered families when empty) and
// returns the in-memory artifact. A family whose export fails is logged,
// recorded with zero rows and listed in Metadata.Failed; the others are
// unaffected. Only cancellation aborts the run.
func (e *Engine) Snapshot(ctx context.Context, families []domain.Family, cutoff *time.Time) (*Artifact, error) {
	if len(families) == 0 {
		families = schema.Families()
	}
	order, err := schema.DependencyOrder(families)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		data   = make(map[string][]Record, len(order))
		failed = map[string]string{}
	)
	opts := domain.ListOptions{Since: cutoff}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanOut)
	for _, family := range order {
		g.Go(func() error {
			records, err := e.export(gctx, family, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.log.Error("family export failed", "family", family, "error", err)
				mu.Lock()
				failed[family.String()] = err.Error()
				data[family.String()] = []Record{}
				mu.Unlock()
				return nil
			}
			e.log.Info("family exported", "family", family, "rows", len(records))
			mu.Lock()
			data[family.String()] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta := &Metadata{
		BackupDate:   e.now().UTC(),
		Tables:       make([]string, len(order)),
		RecordCounts: make(map[string]int, len(order)),
	}
	if cutoff != nil {
		c := cutoff.UTC()
		meta.CutoffDate = &c
	}
	for i, family := range order {
		meta.Tables[i] = family.String()
		meta.RecordCounts[family.String()] = len(data[family.String()])
	}
	if len(failed) > 0 {
		meta.Failed = failed
	}
	return &Artifact{Data: data, Metadata: meta}, nil
}

func (e *Engine) export(ctx context.Context, family domain.Family, opts domain.ListOptions) ([]Record, error) {
	src, ok := e.sources[family]
	if !ok {
		return nil, fmt.Errorf("no source registered for %s", family)
	}
	entities, err := src.Export(ctx, opts)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(entities))
	for i, v := range entities {
		if records[i], err = translator.Encode(v); err != nil {
			return nil, err
		}
	}
	return records, nil
}

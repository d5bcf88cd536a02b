// Package consistency compares a record as stored by the legacy backend with
// the same record in the new backend.
package consistency

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// DefaultIgnore lists fields that legitimately drift between backends.
var DefaultIgnore = []string{"updated_at"}

type Diff struct {
	Field  string `json:"field"`
	Legacy any    `json:"legacy"`
	New    any    `json:"new"`
}

type DiffReport struct {
	Family      domain.Family `json:"family"`
	ID          string        `json:"id"`
	LegacyFound bool          `json:"legacy_found"`
	NewFound    bool          `json:"new_found"`
	Diffs       []Diff        `json:"diffs"`
	Match       bool          `json:"match"`
}

// Prober hands out per-family readers that target one backend explicitly.
// *adapter.Set satisfies it.
type Prober interface {
	Probe(family domain.Family) (adapter.Probe, error)
}

type Option func(*Checker)

// WithIgnore replaces the ignored field list. Entries match a dotted path or
// any path beneath it.
func WithIgnore(fields ...string) Option {
	return func(c *Checker) { c.ignore = fields }
}

func WithFanOut(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.fanOut = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

type Checker struct {
	probes Prober
	ignore []string
	fanOut int
	log    *logger.Logger
}

func NewChecker(probes Prober, opts ...Option) *Checker {
	c := &Checker{probes: probes, ignore: DefaultIgnore, fanOut: 8, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "consistency")
	return c
}

// Compare fetches id from both backends and diffs the canonical forms. A
// difference is reported, never returned as an error; only a failed fetch is.
func (c *Checker) Compare(ctx context.Context, id string, family domain.Family) (*DiffReport, error) {
	probe, err := c.probes.Probe(family)
	if err != nil {
		return nil, err
	}
	mapping, err := translator.For(family)
	if err != nil {
		return nil, err
	}

	var legacyRow, newRow map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := probe.FetchFrom(gctx, domain.BackendLegacy, id)
		if err != nil {
			return fmt.Errorf("fetch %s/%s from legacy: %w", family, id, err)
		}
		legacyRow = row
		return nil
	})
	g.Go(func() error {
		row, err := probe.FetchFrom(gctx, domain.BackendNew, id)
		if err != nil {
			return fmt.Errorf("fetch %s/%s from new: %w", family, id, err)
		}
		newRow = row
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DiffReport{
		Family:      family,
		ID:          id,
		LegacyFound: legacyRow != nil,
		NewFound:    newRow != nil,
		Diffs:       []Diff{},
	}
	if !report.LegacyFound || !report.NewFound {
		c.log.Warn("record missing on one side", "family", family, "id", id,
			"legacy_found", report.LegacyFound, "new_found", report.NewFound)
		return report, nil
	}

	skip := append([]string(nil), c.ignore...)
	for _, d := range mapping.CanonicalOnly {
		skip = append(skip, d.Canonical)
	}

	left, right := flatten(legacyRow), flatten(newRow)
	for _, path := range unionKeys(left, right) {
		if excluded(path, skip) {
			continue
		}
		lv, rv := left[path], right[path]
		if !reflect.DeepEqual(lv, rv) {
			report.Diffs = append(report.Diffs, Diff{Field: path, Legacy: lv, New: rv})
		}
	}
	report.Match = len(report.Diffs) == 0
	if !report.Match {
		c.log.Info("records differ", "family", family, "id", id, "fields", len(report.Diffs))
	}
	return report, nil
}

// CompareMany runs Compare for every id with bounded concurrency. Reports
// keep the order of ids. The first fetch failure cancels the rest.
func (c *Checker) CompareMany(ctx context.Context, family domain.Family, ids []string) ([]*DiffReport, error) {
	reports := make([]*DiffReport, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			r, err := c.Compare(gctx, id, family)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// flatten turns nested objects into dotted paths. Lists stay leaf values.
func flatten(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	var walk func(prefix string, v map[string]any)
	walk = func(prefix string, v map[string]any) {
		for k, val := range v {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
				walk(path, nested)
				continue
			}
			out[path] = val
		}
	}
	walk("", m)
	return out
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func excluded(path string, skip []string) bool {
	for _, s := range skip {
		if path == s || strings.HasPrefix(path, s+".") {
			return true
		}
	}
	return false
}

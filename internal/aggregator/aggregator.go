// Package aggregator is the query facade over the collectors: it
// computes each category on first request and serves the cached report
// until Refresh.
//
// Requesting the summary fills the identity, memory and cpu entries as
// a side effect, so a later GetCategory(cpu) returns the sample taken
// during the summary instead of blocking for a new one.
//
// An Aggregator is not safe for concurrent use. Front ends that serve
// several callers must serialize calls themselves.
package aggregator

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/go-tangra/go-tangra-sysinfo/internal/cache"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/report"
)

// Entry is what the cache holds for one category. Snapshot is nil when
// collection failed; Report is always renderable.
type Entry struct {
	Snapshot collector.Snapshot
	Report   string
	Err      error
}

// summaryParts lists the dashboard blocks in display order.
var summaryParts = []struct {
	category collector.Category
	title    string
}{
	{collector.CategoryIdentity, "System Summary"},
	{collector.CategoryMemory, "Memory Usage"},
	{collector.CategoryCPU, "CPU Usage"},
}

// Aggregator owns a cache store and one collector per category.
type Aggregator struct {
	collectors map[collector.Category]collector.Collector
	cache      *cache.Store[collector.Category, Entry]
	log        *log.Helper
}

// New creates an aggregator with an empty cache. A later collector for
// the same category replaces an earlier one.
func New(logger log.Logger, collectors ...collector.Collector) *Aggregator {
	a := &Aggregator{
		collectors: make(map[collector.Category]collector.Collector, len(collectors)),
		cache:      cache.New[collector.Category, Entry](),
		log:        log.NewHelper(log.With(logger, "module", "aggregator")),
	}
	for _, c := range collectors {
		a.collectors[c.Category()] = c
	}
	return a
}

// GetCategory returns the report for c, collecting it on a cache miss.
// Failures come back as report text, never as an error.
func (a *Aggregator) GetCategory(ctx context.Context, c collector.Category) string {
	return a.entry(ctx, c).Report
}

// Snapshot returns the typed record behind GetCategory, sharing its cache.
func (a *Aggregator) Snapshot(ctx context.Context, c collector.Category) (collector.Snapshot, error) {
	e := a.entry(ctx, c)
	return e.Snapshot, e.Err
}

// Entry returns the whole cache entry for c: snapshot, report and error.
func (a *Aggregator) Entry(ctx context.Context, c collector.Category) Entry {
	return a.entry(ctx, c)
}

// Titled returns the detailed view of c: the title, a blank line, then
// the report.
func (a *Aggregator) Titled(ctx context.Context, c collector.Category) string {
	return c.Title() + "\n\n" + a.GetCategory(ctx, c)
}

// GetSummary concatenates the identity, memory and cpu reports, each
// under its title line.
func (a *Aggregator) GetSummary(ctx context.Context) string {
	blocks := make([]string, 0, len(summaryParts))
	for _, p := range summaryParts {
		blocks = append(blocks, p.title+"\n"+a.GetCategory(ctx, p.category))
	}
	return strings.Join(blocks, "\n\n")
}

// Refresh drops every cached entry and recomputes the summary
// categories. The remaining categories stay uncached until requested.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.cache.ClearAll()
	a.log.Debug("cache cleared")
	for _, p := range summaryParts {
		a.entry(ctx, p.category)
	}
}

// Cached reports whether c currently has a cache entry.
func (a *Aggregator) Cached(c collector.Category) bool {
	_, ok := a.cache.Get(c)
	return ok
}

func (a *Aggregator) entry(ctx context.Context, c collector.Category) Entry {
	if e, ok := a.cache.Get(c); ok {
		return e
	}

	col, ok := a.collectors[c]
	if !ok {
		err := fmt.Errorf("%w: no collector for category %q", collector.ErrProbeUnavailable, c)
		return Entry{Report: report.Error(c, err), Err: err}
	}

	a.log.Debugf("collecting %s", c)
	snap, err := col.Collect(ctx)
	var e Entry
	if err != nil {
		a.log.Warnf("collect %s: %v", c, err)
		e = Entry{Report: report.Error(c, err), Err: err}
	} else {
		e = Entry{Snapshot: snap, Report: report.Render(snap)}
	}
	a.cache.Put(c, e)
	return e
}

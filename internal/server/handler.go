package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/go-tangra/go-tangra-sysinfo/internal/aggregator"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/convert"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

// Handler serves the aggregator to both front ends. Its methods assume
// a single caller at a time; the HTTP and gRPC servers built here share
// mu to guarantee that.
type Handler struct {
	mu       sync.Mutex
	agg      *aggregator.Aggregator
	archive  *store.Store
	hostname string
	now      func() time.Time
	log      *log.Helper
}

var _ TelemetryServer = (*Handler)(nil)

// NewHandler creates a handler. archive may be nil, which disables the
// export endpoints.
func NewHandler(logger log.Logger, agg *aggregator.Aggregator, archive *store.Store, hostname string) *Handler {
	return &Handler{
		agg:      agg,
		archive:  archive,
		hostname: hostname,
		now:      time.Now,
		log:      log.NewHelper(log.With(logger, "module", "server")),
	}
}

// CategoryInfo names one category and its detailed-view title.
type CategoryInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CategoryReport is a single category report.
type CategoryReport struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Report   string `json:"report"`
}

// ExportResult identifies an archived export run.
type ExportResult struct {
	RunID string `json:"run_id"`
	Count int    `json:"count"`
}

func parseCategory(name string) (collector.Category, error) {
	c, err := collector.ParseCategory(name)
	if err != nil {
		return "", errors.NotFound("CATEGORY_NOT_FOUND", err.Error())
	}
	return c, nil
}

// Categories lists every category in display order.
func (h *Handler) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(collector.Categories()))
	for _, c := range collector.Categories() {
		out = append(out, CategoryInfo{Name: string(c), Title: c.Title()})
	}
	return out
}

// Report returns the cached or freshly collected report for name.
func (h *Handler) Report(ctx context.Context, name string) (*CategoryReport, error) {
	c, err := parseCategory(name)
	if err != nil {
		return nil, err
	}

	return &CategoryReport{
		Category: string(c),
		Title:    c.Title(),
		Report:   h.agg.GetCategory(ctx, c),
	}, nil
}

// Summary returns the dashboard summary.
func (h *Handler) Summary(ctx context.Context) string {
	return h.agg.GetSummary(ctx)
}

// RefreshAll invalidates the cache and recomputes the summary categories.
func (h *Handler) RefreshAll(ctx context.Context) {
	h.agg.Refresh(ctx)
	h.log.Info("cache refreshed")
}

// Export archives the current report of every category as one run.
func (h *Handler) Export(ctx context.Context) (*ExportResult, error) {
	if h.archive == nil {
		return nil, errors.ServiceUnavailable("ARCHIVE_DISABLED", "no report database configured")
	}

	at := h.now()
	records := make([]store.Report, 0, len(collector.Categories()))
	for _, c := range collector.Categories() {
		records = append(records, convert.EntryToRecord(h.hostname, c, h.agg.Entry(ctx, c), at))
	}

	runID, err := h.archive.InsertRun(ctx, records)
	if err != nil {
		return nil, errors.InternalServer("EXPORT_FAILED", err.Error())
	}
	h.log.Infof("exported %d reports as run %s", len(records), runID)
	return &ExportResult{RunID: runID, Count: len(records)}, nil
}

// History lists archived reports, newest first.
func (h *Handler) History(ctx context.Context, f store.ListFilter) ([]convert.ArchivedReport, error) {
	if h.archive == nil {
		return nil, errors.ServiceUnavailable("ARCHIVE_DISABLED", "no report database configured")
	}
	if f.Category != "" {
		c, err := parseCategory(f.Category)
		if err != nil {
			return nil, err
		}
		f.Category = string(c)
	}
	rs, err := h.archive.List(ctx, f)
	if err != nil {
		return nil, errors.InternalServer("HISTORY_FAILED", err.Error())
	}
	return convert.RecordsToAPI(rs), nil
}

func (h *Handler) GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*httpbody.HttpBody, error) {
	r, err := h.Report(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return convert.ReportToBody(r.Report), nil
}

func (h *Handler) GetSummary(ctx context.Context, _ *emptypb.Empty) (*httpbody.HttpBody, error) {
	return convert.ReportToBody(h.Summary(ctx)), nil
}

func (h *Handler) Refresh(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	h.RefreshAll(ctx)
	return &emptypb.Empty{}, nil
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/go-tangra/go-tangra-sysinfo/internal/aggregator"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/config"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

type stubCollector struct {
	category collector.Category
	snap     collector.Snapshot
	calls    int
}

func (s *stubCollector) Category() collector.Category { return s.category }

func (s *stubCollector) Collect(context.Context) (collector.Snapshot, error) {
	s.calls++
	return s.snap, nil
}

type fixture struct {
	handler *Handler
	cpu     *stubCollector
}

func newFixture(t *testing.T, withArchive bool) *fixture {
	t.Helper()
	cpu := &stubCollector{category: collector.CategoryCPU, snap: collector.CPU{UsagePercent: 12.5, LogicalCores: 8, PhysicalCores: 4}}
	agg := aggregator.New(log.DefaultLogger,
		&stubCollector{category: collector.CategoryIdentity, snap: collector.Identity{Platform: "Linux", Hostname: "build01"}},
		&stubCollector{category: collector.CategoryMemory, snap: collector.Memory{Total: 8589934592, Available: 4294967296}},
		cpu,
	)

	var archive *store.Store
	if withArchive {
		s, err := store.New(filepath.Join(t.TempDir(), "sysinfo.db"))
		if err != nil {
			t.Fatalf("store.New: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		archive = s
	}
	return &fixture{handler: NewHandler(log.DefaultLogger, agg, archive, "build01"), cpu: cpu}
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewHTTPServer(&config.Config{HTTPListen: "127.0.0.1:0"}, f.handler, log.DefaultLogger, nil)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHTTPCategory(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/v1/categories/cpu")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got CategoryReport
	decode(t, rec, &got)
	if got.Category != "cpu" || got.Title != "CPU Information" {
		t.Errorf("reply = %+v", got)
	}
	if !strings.HasPrefix(got.Report, "CPU Usage: 12.5%") {
		t.Errorf("report = %q", got.Report)
	}

	f.do(t, http.MethodGet, "/v1/categories/cpu")
	if f.cpu.calls != 1 {
		t.Errorf("cpu collected %d times, want 1", f.cpu.calls)
	}
}

func TestHTTPUnknownCategory(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/v1/categories/gpu")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CATEGORY_NOT_FOUND") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestHTTPCategoriesAndSummary(t *testing.T) {
	f := newFixture(t, false)

	var list categoriesReply
	decode(t, f.do(t, http.MethodGet, "/v1/categories"), &list)
	if len(list.Categories) != 7 || list.Categories[0].Name != "identity" {
		t.Errorf("categories = %+v", list.Categories)
	}

	var sum summaryReply
	decode(t, f.do(t, http.MethodGet, "/v1/summary"), &sum)
	if !strings.HasPrefix(sum.Report, "System Summary\n") {
		t.Errorf("summary = %q", sum.Report)
	}
}

func TestHTTPRefresh(t *testing.T) {
	f := newFixture(t, false)
	f.do(t, http.MethodGet, "/v1/categories/cpu")

	rec := f.do(t, http.MethodPost, "/v1/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.cpu.calls != 2 {
		t.Errorf("cpu collected %d times after refresh, want 2", f.cpu.calls)
	}
}

func TestHTTPOperationHeader(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/v1/categories/memory")
	if got := rec.Header().Get(OperationHeader); got != TelemetryGetCategoryMethod {
		t.Errorf("%s = %q, want %q", OperationHeader, got, TelemetryGetCategoryMethod)
	}
}

func TestHTTPExportAndHistory(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/v1/exports")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", rec.Code, rec.Body)
	}
	var exp ExportResult
	decode(t, rec, &exp)
	if exp.RunID == "" || exp.Count != len(collector.Categories()) {
		t.Errorf("export = %+v", exp)
	}

	var hist historyReply
	decode(t, f.do(t, http.MethodGet, "/v1/exports?category=memory"), &hist)
	if len(hist.Reports) != 1 {
		t.Fatalf("history = %+v", hist.Reports)
	}
	if r := hist.Reports[0]; r.RunID != exp.RunID || r.Failed || !strings.HasPrefix(r.Report, "Total: 8.00 GB") {
		t.Errorf("memory report = %+v", r)
	}

	decode(t, f.do(t, http.MethodGet, "/v1/exports?category=software"), &hist)
	if len(hist.Reports) != 1 || !hist.Reports[0].Failed {
		t.Errorf("software history = %+v", hist.Reports)
	}

	if rec := f.do(t, http.MethodGet, "/v1/exports?limit=x"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rec.Code)
	}
}

func TestHTTPExportWithoutArchive(t *testing.T) {
	f := newFixture(t, false)
	if rec := f.do(t, http.MethodPost, "/v1/exports"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func dialBufconn(t *testing.T, h *Handler) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(h)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCTelemetry(t *testing.T) {
	f := newFixture(t, false)
	conn := dialBufconn(t, f.handler)
	ctx := context.Background()

	body := new(httpbody.HttpBody)
	if err := conn.Invoke(ctx, TelemetryGetCategoryMethod, wrapperspb.String("memory"), body); err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if body.ContentType != "text/plain; charset=utf-8" || !strings.HasPrefix(string(body.Data), "Total: 8.00 GB") {
		t.Errorf("body = %q (%s)", body.Data, body.ContentType)
	}

	if err := conn.Invoke(ctx, TelemetryGetSummaryMethod, &emptypb.Empty{}, body); err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if !strings.Contains(string(body.Data), "Memory Usage\n") {
		t.Errorf("summary = %q", body.Data)
	}

	if err := conn.Invoke(ctx, TelemetryRefreshMethod, &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	err := conn.Invoke(ctx, TelemetryGetCategoryMethod, wrapperspb.String("gpu"), body)
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown category: code = %s, err = %v", status.Code(err), err)
	}
}

// overlapCollector records the highest number of concurrent Collect calls.
type overlapCollector struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (o *overlapCollector) Category() collector.Category { return collector.CategoryCPU }

func (o *overlapCollector) Collect(context.Context) (collector.Snapshot, error) {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return collector.CPU{LogicalCores: 1, PhysicalCores: 1}, nil
}

func TestRequestsAreSerialized(t *testing.T) {
	counter := &overlapCollector{}
	h := NewHandler(log.DefaultLogger, aggregator.New(log.DefaultLogger, counter), nil, "build01")
	httpSrv := NewHTTPServer(&config.Config{HTTPListen: "127.0.0.1:0"}, h, log.DefaultLogger, nil)
	conn := dialBufconn(t, h)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			httpSrv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("refresh status = %d", rec.Code)
			}
		}()
		go func() {
			defer wg.Done()
			if err := conn.Invoke(context.Background(), TelemetryRefreshMethod, &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
				t.Errorf("Refresh: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := counter.peak.Load(); p != 1 {
		t.Errorf("peak concurrent collections = %d, want 1", p)
	}
}

func TestIsTelemetryMethod(t *testing.T) {
	if !isTelemetryMethod(TelemetryGetSummaryMethod) {
		t.Error("GetSummary not recognised")
	}
	if isTelemetryMethod("/grpc.reflection.v1.ServerReflection/ServerReflectionInfo") {
		t.Error("reflection treated as telemetry")
	}
}

func TestRunStopsPurgeBeforeClosingArchive(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Listen:            "127.0.0.1:0",
		HTTPListen:        "127.0.0.1:0",
		DatabasePath:      filepath.Join(t.TempDir(), "sysinfo.db"),
		RetentionDays:     1,
		PurgeInterval:     time.Millisecond,
		CPUSampleInterval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, log.NewStdLogger(&buf), nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	out := buf.String()
	if !strings.Contains(out, "shutting down") {
		t.Errorf("no shutdown logged: %s", out)
	}
	if strings.Contains(out, "purge:") || strings.Contains(out, "HTTP server error") {
		t.Errorf("errors logged during shutdown: %s", out)
	}
}

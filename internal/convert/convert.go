package convert

import (
	"time"

	"google.golang.org/genproto/googleapis/api/httpbody"

	"github.com/go-tangra/go-tangra-sysinfo/internal/aggregator"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

// TextContentType is the content type of report bodies.
const TextContentType = "text/plain; charset=utf-8"

// ArchivedReport is the API form of an archived report.
type ArchivedReport struct {
	ID          int64  `json:"id"`
	RunID       string `json:"run_id"`
	Hostname    string `json:"hostname"`
	Category    string `json:"category"`
	Report      string `json:"report"`
	Failed      bool   `json:"failed"`
	CollectedAt string `json:"collected_at"`
}

// ReportToBody wraps report text in an HttpBody.
func ReportToBody(report string) *httpbody.HttpBody {
	return &httpbody.HttpBody{
		ContentType: TextContentType,
		Data:        []byte(report),
	}
}

// BodyToReport returns the text carried by b. A nil body is empty.
func BodyToReport(b *httpbody.HttpBody) string {
	if b == nil {
		return ""
	}
	return string(b.GetData())
}

// EntryToRecord converts a cached aggregator entry to an archive row.
func EntryToRecord(hostname string, c collector.Category, e aggregator.Entry, at time.Time) store.Report {
	return store.Report{
		Hostname:    hostname,
		Category:    string(c),
		Report:      e.Report,
		Failed:      e.Err != nil,
		CollectedAt: at,
	}
}

// RecordToAPI converts an archive row to its API form.
func RecordToAPI(r store.Report) ArchivedReport {
	return ArchivedReport{
		ID:          r.ID,
		RunID:       r.RunID,
		Hostname:    r.Hostname,
		Category:    r.Category,
		Report:      r.Report,
		Failed:      r.Failed,
		CollectedAt: r.CollectedAt.UTC().Format(time.RFC3339),
	}
}

// RecordsToAPI converts a slice of archive rows, never returning nil.
func RecordsToAPI(rs []store.Report) []ArchivedReport {
	out := make([]ArchivedReport, 0, len(rs))
	for _, r := range rs {
		out = append(out, RecordToAPI(r))
	}
	return out
}

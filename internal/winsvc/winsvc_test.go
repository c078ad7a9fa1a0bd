package winsvc

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
)

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		in   []any
		want string
	}{
		{[]any{"msg", "cache refreshed"}, "msg=cache refreshed"},
		{[]any{"module", "server", "msg", "shutting down"}, "module=server msg=shutting down"},
		{[]any{"msg"}, "msg=KEYVALS UNPAIRED"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := formatRecord(tt.in...); got != tt.want {
			t.Errorf("formatRecord(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventTypeFor(t *testing.T) {
	tests := map[log.Level]eventType{
		log.LevelDebug: eventInfo,
		log.LevelInfo:  eventInfo,
		log.LevelWarn:  eventWarning,
		log.LevelError: eventError,
		log.LevelFatal: eventError,
	}
	for level, want := range tests {
		if got := eventTypeFor(level); got != want {
			t.Errorf("eventTypeFor(%s) = %d, want %d", level, got, want)
		}
	}
}

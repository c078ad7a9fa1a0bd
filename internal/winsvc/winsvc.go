// Package winsvc hosts sysinfo as a Windows service. On other platforms
// every entry point reports ErrUnsupported.
package winsvc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	// ServiceName is the SCM name and event log source.
	ServiceName = "sysinfo"
	// DisplayName is shown in the services console.
	DisplayName = "sysinfo telemetry"
	// Description is shown in the services console.
	Description = "Serves cached host telemetry reports over HTTP and gRPC."
)

// ErrUnsupported is returned outside Windows.
var ErrUnsupported = errors.New("windows services are not supported on this platform")

// formatRecord renders key/value pairs the way the kratos std logger
// does, without the level prefix.
func formatRecord(keyvals ...any) string {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}
	var buf bytes.Buffer
	for i := 0; i < len(keyvals); i += 2 {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s=%v", keyvals[i], keyvals[i+1])
	}
	return buf.String()
}

// eventType maps a log level onto the three event log severities.
type eventType int

const (
	eventInfo eventType = iota
	eventWarning
	eventError
)

func eventTypeFor(level log.Level) eventType {
	switch {
	case level >= log.LevelError:
		return eventError
	case level == log.LevelWarn:
		return eventWarning
	default:
		return eventInfo
	}
}

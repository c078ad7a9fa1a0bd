//go:build windows

package winsvc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

const eventID = 1

// eventLogger is a kratos logger writing to the Windows Event Log.
// Entries carry their own timestamps.
type eventLogger struct {
	elog *eventlog.Log
}

func (l *eventLogger) Log(level log.Level, keyvals ...any) error {
	msg := formatRecord(keyvals...)
	switch eventTypeFor(level) {
	case eventError:
		return l.elog.Error(eventID, msg)
	case eventWarning:
		return l.elog.Warning(eventID, msg)
	default:
		return l.elog.Info(eventID, msg)
	}
}

// NewEventLogger opens the named event log source. The returned close
// function releases it.
func NewEventLogger(name string) (log.Logger, func() error, error) {
	elog, err := eventlog.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log %s: %w", name, err)
	}
	return &eventLogger{elog: elog}, elog.Close, nil
}

// IsWindowsService reports whether the process is running as a
// Windows service.
func IsWindowsService() bool {
	ok, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return ok
}

// serviceHandler implements svc.Handler for a long-running function.
type serviceHandler struct {
	name string
	log  *log.Helper
	run  func(ctx context.Context) error
}

func (h *serviceHandler) Execute(_ []string, req <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown
	status <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.run(ctx)
	}()

	status <- svc.Status{State: svc.Running, Accepts: accepted}

	for {
		select {
		case err := <-errCh:
			status <- svc.Status{State: svc.StopPending}
			if err != nil {
				h.log.Errorf("service %s stopped: %v", h.name, err)
				return false, 1
			}
			return false, 0

		case cr := <-req:
			switch cr.Cmd {
			case svc.Interrogate:
				status <- cr.CurrentStatus
			case svc.Stop, svc.Shutdown:
				status <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-errCh:
				case <-time.After(30 * time.Second):
					h.log.Warnf("service %s: timed out waiting for shutdown", h.name)
				}
				return false, 0
			}
		}
	}
}

// RunService runs the named Windows service, blocking until it stops.
// run receives a context cancelled when the SCM requests a stop.
func RunService(name string, logger log.Logger, run func(ctx context.Context) error) error {
	return svc.Run(name, &serviceHandler{
		name: name,
		log:  log.NewHelper(log.With(logger, "module", "winsvc")),
		run:  run,
	})
}

// Install registers the running executable as an auto-start service
// launched with args, and creates its event log source.
func Install(name string, args []string) error {
	path, err := exePath()
	if err != nil {
		return err
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err == nil {
		s.Close()
		return fmt.Errorf("service %s already exists", name)
	}

	s, err = m.CreateService(name, path, mgr.Config{
		DisplayName: DisplayName,
		Description: Description,
		StartType:   mgr.StartAutomatic,
	}, args...)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer s.Close()

	// Restart on the first two failures; reset after a day.
	_ = s.SetRecoveryActions([]mgr.RecoveryAction{
		{Type: mgr.ServiceRestart, Delay: 10 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 30 * time.Second},
		{Type: mgr.NoAction},
	}, 86400)

	if err := eventlog.InstallAsEventCreate(name, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		return fmt.Errorf("service installed, event log source failed: %w", err)
	}
	return nil
}

// Uninstall stops and removes the named service and its event log source.
func Uninstall(name string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return fmt.Errorf("open service %s: %w", name, err)
	}
	defer s.Close()

	st, err := s.Query()
	if err == nil && st.State != svc.Stopped {
		_, _ = s.Control(svc.Stop)
		for range 10 {
			time.Sleep(500 * time.Millisecond)
			st, err = s.Query()
			if err != nil || st.State == svc.Stopped {
				break
			}
		}
	}

	if err := s.Delete(); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	_ = eventlog.Remove(name)
	return nil
}

func exePath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return p, nil
}

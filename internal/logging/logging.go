package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogFilePath names a session log: <dir>/<name>.<start>.log.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(logsDir, name+"."+sessionStart.Format("20060102_150405")+".log")
}

// OpenLogFile creates logsDir if needed and opens the session log for
// appending. A log already at that path is moved aside to "<path>.old".
func OpenLogFile(logsDir, name string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	path := LogFilePath(logsDir, name, sessionStart)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, fmt.Errorf("rotate %s: %w", path, err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

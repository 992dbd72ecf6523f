package drill

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/qte/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log records to stdout and a log file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "drill_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the drill tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `QTE Drill
=========

Starts many quick time events against a running QTE service, answers them
concurrently (hit, duplicate hit, cancel or let time out) and checks the
service counters moved by exactly what was planned.

Usage:
  go run ./cmd/qte-drill [options]

Options:
  -url string          Base URL of the service (default "http://localhost:9080")
  -prompts int         Number of QTEs to start (default 200)
  -owners int          Owners to spread prompts over (default 8)
  -workers int         Concurrent workers (default CPU cores * 2)
  -duration duration   Duration of every drill QTE (default 1s)
  -timeout duration    HTTP request timeout (default 10s)
  -log string          Log file (default: drill_log_TIMESTAMP.log)
  -verbose             Log every prompt
  -help                Show this help message

The drill assumes it is the only client; concurrent traffic skews the counters.
`)
}

package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/qte/internal/drill"
)

// Default configuration constants.
const (
	defaultPrompts        = 200
	defaultOwners         = 8
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 10 * time.Second
	defaultPromptDuration = time.Second
	defaultDrillTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		prompts  = flag.Int("prompts", defaultPrompts, "Number of QTEs to start")
		owners   = flag.Int("owners", defaultOwners, "Owners to spread prompts over")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		duration = flag.Duration("duration", defaultPromptDuration, "Duration of every drill QTE")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Log file (default: drill_log_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Log every prompt")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		drill.ShowHelp(os.Stdout)
		return
	}

	closer, err := drill.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultDrillTimeout)
	defer cancel()

	if _, err := drill.Run(ctx, &drill.Config{
		BaseURL:        *baseURL,
		Prompts:        *prompts,
		Owners:         *owners,
		Workers:        *workers,
		Timeout:        *timeout,
		PromptDuration: *duration,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}); err != nil {
		os.Stderr.WriteString("Drill failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // deferred close is best effort
	}
}

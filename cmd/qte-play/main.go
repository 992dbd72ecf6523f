package main

import (
	"context"
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	app "github.com/okian/qte/internal/app"
	"github.com/okian/qte/internal/config"
	"github.com/okian/qte/internal/ui"
	"github.com/okian/qte/pkg/logger"
)

const logFilePermission = 0600

func main() {
	logFile := flag.String("log", "qte-play.log", "Log file; the terminal is used for drawing")
	flag.Parse()

	// Log records would corrupt the screen, so they go to a file.
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer f.Close()
	if err := logger.InitWithWriter(f); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	m := ui.New(app.PolicyFromConfig(cfg), app.MapperFromConfig(cfg),
		ui.WithFrameInterval(cfg.TickInterval),
		ui.WithLogger(logger.Named("player")),
	)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Get().Error(ctx, "player failed", logger.Error(err))
		os.Exit(1) //nolint:gocritic // log file close is best effort
	}
}

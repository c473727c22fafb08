package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/client"
	"github.com/MikeMC777/catalog-browser/internal/config"
)

type Flags struct {
	BaseURL  string
	Output   string
	LogLevel string
	LogFile  string
	Timeout  time.Duration

	// Client and Logger are built in the Before hook and available to all commands
	Client *client.Client
	Logger *zap.Logger
}

// DefaultLogFile returns the log path under the system's state directory.
// The terminal browser owns the screen, so logs never go to stderr.
func DefaultLogFile() string {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, "catalog", "catalog.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "catalog", "catalog.log")
	}
	return filepath.Join(home, ".local", "state", "catalog", "catalog.log")
}

// Setup validates the global flags and builds the logger and API client.
// The returned func flushes the logger.
func (f *Flags) Setup() (func(), error) {
	if _, err := ParseFormat(f.Output); err != nil {
		return nil, err
	}

	logFile := f.LogFile
	if logFile == "" {
		logFile = DefaultLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	log, err := config.NewLogger(f.LogLevel, "json", map[string]any{"app": "catalog"}, logFile)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	f.Logger = log
	f.Client = client.New(f.BaseURL, f.Timeout)
	log.Debug("catalog cli ready", zap.String("base_url", f.Client.BaseURL), zap.Duration("timeout", f.Timeout))
	return func() { _ = log.Sync() }, nil
}

func (f *Flags) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *Flags) format() Format {
	out, err := ParseFormat(f.Output)
	if err != nil {
		return FormatTable
	}
	return out
}

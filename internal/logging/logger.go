// Package logging configures the zerolog debug log. While the TUI owns the
// terminal all log output goes to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at w. debug lowers the level from info to debug.
func Setup(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Path returns where the debug log lives.
// Running from the source tree (go run, ./bin/filexfer) logs to .logs/debug.log
// under the working directory; an installed binary logs to
// $XDG_STATE_HOME/filexfer/debug.log.
func Path() string {
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		cwd, _ := os.Getwd()
		if strings.HasPrefix(exeDir, cwd) || strings.Contains(exeDir, "go-build") {
			return ensureDir(filepath.Join(cwd, ".logs"), "debug.log")
		}
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	return ensureDir(filepath.Join(stateDir, "filexfer"), "debug.log")
}

func ensureDir(dir, name string) string {
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, name)
}

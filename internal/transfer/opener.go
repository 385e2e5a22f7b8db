package transfer

import (
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// BrowserOpener hands a URL to the platform's default URL handler. It does
// not wait for the handler and never observes whether the download worked.
type BrowserOpener struct {
	// GOOS overrides runtime.GOOS; empty means the running platform.
	GOOS string
	// start runs the command; nil means startDetached.
	start func(name string, args ...string) error
}

// Open launches the handler for url.
func (o BrowserOpener) Open(url string) error {
	name, args := openCommand(o.goos(), url)
	if o.start != nil {
		return o.start(name, args...)
	}
	_, err := startDetached(exec.Command(name, args...))
	return err
}

// startDetached starts cmd without waiting for it and reaps it in the
// background. The returned channel is closed once the process has exited.
func startDetached(cmd *exec.Cmd) (<-chan struct{}, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("cmd", cmd.Path).Msg("url handler exited")
		}
	}()
	return done, nil
}

func (o BrowserOpener) goos() string {
	if o.GOOS != "" {
		return o.GOOS
	}
	return runtime.GOOS
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

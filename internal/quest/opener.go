package quest

import (
	"context"
	"os/exec"
	"runtime"
)

// BrowserOpener opens URLs with the platform's default handler.
type BrowserOpener struct{}

// Open starts the handler and returns without waiting for it.
func (BrowserOpener) Open(ctx context.Context, url string) error {
	return browserCommand(ctx, runtime.GOOS, url).Start()
}

func browserCommand(ctx context.Context, goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.CommandContext(ctx, "open", url)
	default: // "linux", "freebsd", "openbsd", "netbsd"
		return exec.CommandContext(ctx, "xdg-open", url)
	}
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
	API     string `json:"api" yaml:"api"`
}

// VersionCmd prints the client version and, in structured output, the API
// base it is configured for.
type VersionCmd struct{}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "questctl version" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	info := versionInfo{Version: Version, Go: runtime.Version(), API: cfg.Settings.APIBase()}
	if code, done := emit(cfg, out, errOut, info); done {
		return code
	}
	fmt.Fprintf(out, "questctl %s\n", info.Version)
	return exitcode.Success
}

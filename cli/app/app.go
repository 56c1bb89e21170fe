package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/anataliocs/do-math/cli/contract"
	"github.com/anataliocs/do-math/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "do-math\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a do-math instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "do-math"
	ctl.Version = config.Version
	ctl.Usage = "Client for the do_math Soroban contract"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, contract.NewCommands()...)
	return ctl
}

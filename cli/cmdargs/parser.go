/*
Package cmdargs contains helpers for positional command arguments.
*/
package cmdargs

import (
	"fmt"

	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// EnsureN returns an error if the number of positional arguments is not n.
func EnsureN(ctx *cli.Context, n int) *cli.ExitError {
	if ctx.NArg() != n {
		return cli.NewExitError(fmt.Sprintf("%d arguments expected, %d given", n, ctx.NArg()), 1)
	}
	return nil
}

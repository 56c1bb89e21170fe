package cmdargs

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestEnsure(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	require.NoError(t, set.Parse([]string{"one"}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	require.NotNil(t, EnsureNone(ctx))
	require.Nil(t, EnsureN(ctx, 1))
	require.NotNil(t, EnsureN(ctx, 2))

	set = flag.NewFlagSet("flagSet", flag.ContinueOnError)
	require.Nil(t, EnsureNone(cli.NewContext(cli.NewApp(), set, nil)))
}

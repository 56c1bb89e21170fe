package app

import (
	"bytes"
	"testing"

	"github.com/anataliocs/do-math/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	config.Version = "0.1.0-test"
	ctl := New()
	out := bytes.NewBuffer(nil)
	ctl.Writer = out
	require.NoError(t, ctl.Run([]string{"do-math", "--version"}))
	require.Regexp(t, "^do-math\nVersion: 0.1.0-test\nGoVersion: go", out.String())
}

func TestCommands(t *testing.T) {
	ctl := New()
	require.NotNil(t, ctl.Command("contract"))
	var names []string
	for _, c := range ctl.Command("contract").Subcommands {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"fund", "invoke", "resume", "pending"}, names)
}

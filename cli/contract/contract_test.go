package contract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anataliocs/do-math/internal/fakerpc"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type executor struct {
	CLI    *cli.App
	Out    *bytes.Buffer
	Err    *bytes.Buffer
	Node   *fakerpc.Server
	Config string
}

func newExecutor(t *testing.T, version int) *executor {
	node := fakerpc.New(t, xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &xdr.Int128Parts{Lo: 12}})
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`ApplicationConfiguration:
  LogPath: %q
  RPC:
    URL: %q
  Contract:
    Version: %d
    Network: testnet
    PollInterval: 10ms
  DBConfiguration:
    Type: boltdb
    BoltDBOptions:
      FilePath: %q
`, filepath.Join(dir, "log", "do-math.log"), node.URL, version, filepath.Join(dir, "pending.bolt"))), 0600))

	app := cli.NewApp()
	app.Commands = NewCommands()
	e := &executor{
		CLI:    app,
		Out:    bytes.NewBuffer(nil),
		Err:    bytes.NewBuffer(nil),
		Node:   node,
		Config: cfg,
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err

	exiter := cli.OsExiter
	t.Cleanup(func() { cli.OsExiter = exiter })
	return e
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// Run runs the contract subcommand with the test configuration and checks
// that there were no errors.
func (e *executor) Run(t *testing.T, cmd string, args ...string) []string {
	ch := setExitFunc()
	require.NoError(t, e.run(cmd, args...), e.Err.String())
	checkExit(t, ch, 0)
	return e.lines()
}

// RunWithError runs the contract subcommand and checks that it exits with
// error, the error text is returned.
func (e *executor) RunWithError(t *testing.T, cmd string, args ...string) string {
	ch := setExitFunc()
	err := e.run(cmd, args...)
	require.Error(t, err)
	checkExit(t, ch, 1)
	return err.Error()
}

func (e *executor) run(cmd string, args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	var full = []string{"do-math", "contract", cmd, "--config-file", e.Config}
	return e.CLI.Run(append(full, args...))
}

func (e *executor) lines() []string {
	s := strings.TrimSuffix(e.Out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestFund(t *testing.T) {
	e := newExecutor(t, 2)

	t.Run("test account", func(t *testing.T) {
		kp := keypair.MustParseFull(wallet.TestSecret)
		out := e.Run(t, "fund")
		require.Equal(t, []string{
			"Account: " + kp.Address(),
			"Sequence: 429496729600",
		}, out)
		require.Equal(t, []string{kp.Address()}, e.Node.Funded())

		// Already existing account isn't funded again.
		e.Run(t, "fund")
		require.Equal(t, 1, len(e.Node.Funded()))
	})
	t.Run("secret", func(t *testing.T) {
		kp := keypair.MustRandom()
		out := e.Run(t, "fund", "--secret", kp.Seed())
		require.Equal(t, "Account: "+kp.Address(), out[0])
		require.Contains(t, e.Node.Funded(), kp.Address())
	})
	t.Run("bad secret", func(t *testing.T) {
		e.RunWithError(t, "fund", "--secret", "not a seed")
	})
	t.Run("conflicting secret flags", func(t *testing.T) {
		msg := e.RunWithError(t, "fund", "--secret", keypair.MustRandom().Seed(), "--ask-secret")
		require.Contains(t, msg, "conflicts")
	})
	t.Run("extra arguments", func(t *testing.T) {
		e.RunWithError(t, "fund", "something")
	})
}

func TestInvoke(t *testing.T) {
	e := newExecutor(t, 2)

	t.Run("simulate", func(t *testing.T) {
		out := e.Run(t, "invoke", "--a", "5", "--b", "7")
		require.Equal(t, []string{"Simulated result: 12"}, out)
		require.Equal(t, 1, len(e.Node.Simulated()))
		require.Equal(t, 0, len(e.Node.Sent()))
	})
	t.Run("send", func(t *testing.T) {
		out := e.Run(t, "invoke", "--a", "5", "--b", "7", "--send")
		require.Equal(t, 3, len(out))
		require.Equal(t, "Simulated result: 12", out[0])
		require.Regexp(t, "^Hash: [0-9a-f]{64}$", out[1])
		require.Equal(t, "Result: 12", out[2])
		require.Equal(t, 1, len(e.Node.Sent()))
	})
	t.Run("sac", func(t *testing.T) {
		out := e.Run(t, "invoke", "--a", "5", "--b", "7",
			"--sac", "CB2TOIAQHT6DZRLAZWJIZMQNBIKG2LJWBXCTXDDVVBNBZCXDSQD4H2DS")
		require.Equal(t, []string{"Simulated result: 12"}, out)
	})
	t.Run("missing operand", func(t *testing.T) {
		msg := e.RunWithError(t, "invoke", "--a", "5")
		require.Contains(t, msg, "--b")
	})
	t.Run("bad operand", func(t *testing.T) {
		msg := e.RunWithError(t, "invoke", "--a", "five", "--b", "7")
		require.Contains(t, msg, "not a decimal integer")
	})
	t.Run("send and save", func(t *testing.T) {
		msg := e.RunWithError(t, "invoke", "--a", "5", "--b", "7", "--send", "--save")
		require.Contains(t, msg, "conflicts")
	})
	t.Run("bad source", func(t *testing.T) {
		n := len(e.Node.Simulated())
		e.RunWithError(t, "invoke", "--a", "5", "--b", "7", "--source", "GABC")
		require.Equal(t, n, len(e.Node.Simulated()))
	})
}

func TestInvokeSimulationFailure(t *testing.T) {
	e := newExecutor(t, 2)
	e.Node.FailSimulations("HostError: Error(Contract, #1)")

	msg := e.RunWithError(t, "invoke", "--a", "5", "--b", "7")
	require.Contains(t, msg, "simulation failed: HostError: Error(Contract, #1)")
	require.Contains(t, msg, fakerpc.DiagnosticEvent)
	require.Nil(t, e.lines())

	// Failed transaction is kept with its diagnostics when saving.
	e.RunWithError(t, "invoke", "--a", "5", "--b", "7", "--save")
	out := e.lines()
	require.Equal(t, 1, len(out))
	require.True(t, strings.HasPrefix(out[0], "Saved: "))
	id := strings.TrimPrefix(out[0], "Saved: ")

	out = e.Run(t, "pending")
	require.Equal(t, 1, len(out))
	fields := strings.Split(out[0], "\t")
	require.Equal(t, id, fields[0])
	require.Equal(t, "failed", fields[2])

	msg = e.RunWithError(t, "resume", id)
	require.Contains(t, msg, "Error(Contract, #1)")
	require.Contains(t, msg, fakerpc.DiagnosticEvent)
	require.Nil(t, e.Run(t, "pending"))
	require.Equal(t, 0, len(e.Node.Sent()))
}

func TestInvokeV1(t *testing.T) {
	e := newExecutor(t, 1)

	out := e.Run(t, "invoke", "--a", "1", "--b", "2")
	require.Equal(t, []string{"Simulated result: 12"}, out)

	e.RunWithError(t, "invoke", "--a", "1", "--b", "2",
		"--sac", "CB2TOIAQHT6DZRLAZWJIZMQNBIKG2LJWBXCTXDDVVBNBZCXDSQD4H2DS")
	require.Equal(t, 1, len(e.Node.Simulated()))
}

func TestSaveResume(t *testing.T) {
	e := newExecutor(t, 2)

	require.Nil(t, e.Run(t, "pending"))

	out := e.Run(t, "invoke", "--a", "5", "--b", "7", "--save")
	require.Equal(t, 2, len(out))
	require.True(t, strings.HasPrefix(out[1], "Saved: "))
	id := strings.TrimPrefix(out[1], "Saved: ")

	out = e.Run(t, "pending")
	require.Equal(t, 1, len(out))
	fields := strings.Split(out[0], "\t")
	require.Equal(t, id, fields[0])
	require.Equal(t, "do_math", fields[1])
	require.Equal(t, "simulated", fields[2])
	require.Equal(t, 0, len(e.Node.Sent()))

	out = e.Run(t, "resume", id)
	require.Equal(t, 2, len(out))
	require.Regexp(t, "^Hash: [0-9a-f]{64}$", out[0])
	require.Equal(t, "Result: 12", out[1])
	require.Equal(t, 1, len(e.Node.Sent()))

	// Finished transactions are removed.
	require.Nil(t, e.Run(t, "pending"))
	msg := e.RunWithError(t, "resume", id)
	require.Contains(t, msg, "not found")

	t.Run("bad ID", func(t *testing.T) {
		e.RunWithError(t, "resume", "123")
	})
	t.Run("no ID", func(t *testing.T) {
		e.RunWithError(t, "resume")
	})
}

package integration

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/anataliocs/do-math/pkg/config"
	"github.com/anataliocs/do-math/pkg/rpcclient"
	"github.com/anataliocs/do-math/pkg/rpcclient/contract"
	"github.com/anataliocs/do-math/pkg/rpcclient/domath"
	"github.com/anataliocs/do-math/pkg/services/funding"
	"github.com/anataliocs/do-math/pkg/smartcontract/spec"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestnetClient returns a client for the deployed contract, the test is
// skipped unless PUBLIC_RPC_URL points to a testnet RPC node.
func newTestnetClient(t *testing.T, v domath.Version) (context.Context, *domath.Client, string) {
	cfg := config.Default()
	cfg.ApplyEnv(os.LookupEnv)
	if cfg.ApplicationConfiguration.RPC.URL == "" {
		t.Skipf("%s is not set", config.EnvRPCURL)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	log := zaptest.NewLogger(t)
	rpcCfg := cfg.ApplicationConfiguration.RPC
	c, err := rpcclient.New(ctx, rpcCfg.URL, rpcclient.Options{
		DialTimeout:    rpcCfg.DialTimeout,
		RequestTimeout: rpcCfg.RequestTimeout,
		FriendbotURL:   rpcCfg.FriendbotURL,
		Logger:         log,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.Init())

	f, err := funding.New(c, "", log)
	require.NoError(t, err)
	w, err := f.Wallet(ctx)
	require.NoError(t, err)

	dm, err := domath.New(c, v, "testnet", domath.Options{
		PublicKey: w.Address,
		Signer:    w.Signer(),
		Logger:    log,
	})
	require.NoError(t, err)
	return ctx, dm, w.Address
}

func TestTestnetDoMath(t *testing.T) {
	for _, v := range []domath.Version{domath.V1, domath.V2} {
		t.Run(fmt.Sprintf("v%d", v), func(t *testing.T) {
			ctx, dm, source := newTestnetClient(t, v)
			tx, err := dm.DoMath(ctx, domath.DoMathArgs{
				Source: source,
				A:      big.NewInt(40),
				B:      big.NewInt(2),
				Sac:    spec.None(),
			}, contract.CallOptions{})
			require.NoError(t, err)
			res, err := tx.Result()
			require.NoError(t, err)
			require.Equal(t, int64(42), res.Int64())

			res, err = tx.SignAndSend(ctx, false)
			require.NoError(t, err)
			require.Equal(t, int64(42), res.Int64())
		})
	}
}

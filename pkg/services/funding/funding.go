/*
Package funding provides a test keypair whose account is funded on the
network once per process.
*/
package funding

import (
	"context"
	"sync"

	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/stellar/go-stellar-sdk/keypair"
	"go.uber.org/zap"
)

// RPC is the set of methods needed to check and fund an account.
type RPC interface {
	GetAccount(address string) (*result.Account, error)
	FundAccount(address string) error
}

// Service funds the account of its keypair. The attempt is made at most
// once, it can't fail: errors are logged and the keypair is returned anyway.
type Service struct {
	rpc  RPC
	kp   *keypair.Full
	log  *zap.Logger
	once sync.Once
	done chan struct{}
}

// New creates a funding service for the given secret seed, wallet.TestSecret
// is used if it's empty.
func New(rpc RPC, secret string, log *zap.Logger) (*Service, error) {
	if secret == "" {
		secret = wallet.TestSecret
	}
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		rpc:  rpc,
		kp:   kp,
		log:  log.With(zap.String("account", kp.Address())),
		done: make(chan struct{}),
	}, nil
}

// Name returns service name.
func (s *Service) Name() string {
	return "funding"
}

// Start launches the funding attempt in a separate goroutine, it's a no-op
// after the first call.
func (s *Service) Start() {
	s.once.Do(func() {
		go s.fund()
	})
}

func (s *Service) fund() {
	defer close(s.done)
	if _, err := s.rpc.GetAccount(s.kp.Address()); err == nil {
		s.log.Debug("account exists")
		return
	}
	s.log.Info("requesting airdrop")
	if err := s.rpc.FundAccount(s.kp.Address()); err != nil {
		s.log.Warn("failed to fund account", zap.Error(err))
		return
	}
	s.log.Info("account funded")
}

// Keypair starts the service if needed and waits for the funding attempt to
// finish. The same keypair is returned every time, the error is only
// returned if ctx is done first.
func (s *Service) Keypair(ctx context.Context) (*keypair.Full, error) {
	s.Start()
	select {
	case <-s.done:
		return s.kp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wallet is the same as Keypair, but returns a wallet.
func (s *Service) Wallet(ctx context.Context) (*wallet.Wallet, error) {
	kp, err := s.Keypair(ctx)
	if err != nil {
		return nil, err
	}
	return wallet.FromKeypair(kp), nil
}

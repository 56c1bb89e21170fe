/*
Package waiter implements transaction awaiting for Stellar RPC clients. The
node doesn't push transaction results, so they're polled with getTransaction
until the transaction reaches a final state or the deadline passes.
*/
package waiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
)

const (
	// DefaultPollInterval is the time between subsequent getTransaction
	// requests, it's about the ledger close time.
	DefaultPollInterval = time.Second
	// DefaultPollRetryCount is a threshold for a number of subsequent failed
	// attempts to get transaction status from the RPC server. If it fails
	// DefaultPollRetryCount times in a row then transaction awaiting attempt
	// is considered to be failed and an error is returned.
	DefaultPollRetryCount = 3
)

var (
	// ErrTxNotAccepted is returned when transaction wasn't seen in a final
	// state before the deadline.
	ErrTxNotAccepted = errors.New("transaction was not accepted before the deadline")
	// ErrContextDone is returned when Waiter context has been done in the middle
	// of transaction awaiting process and no result was received yet.
	ErrContextDone = errors.New("waiter context done")
)

// RPCPollingBased is an interface that enables transaction awaiting
// functionality based on periodical getTransaction polls.
type RPCPollingBased interface {
	// Context should return the RPC client context to be able to gracefully
	// shut down all running processes (if so).
	Context() context.Context
	GetTransaction(hash string) (*result.GetTransaction, error)
}

// PollConfig is a configuration for PollingBased waiter.
type PollConfig struct {
	// PollInterval is a time interval between subsequent polls,
	// DefaultPollInterval is used if not set.
	PollInterval time.Duration
	// RetryCount is the number of retry attempts while fetching transaction
	// status before an error is returned from Wait.
	RetryCount int
}

// PollingBased is a polling-based Waiter.
type PollingBased struct {
	polling RPCPollingBased
	config  PollConfig
}

// New creates an instance of Waiter supporting poll-based transaction
// awaiting. Default configuration values are used for the ones not set.
func New(waiter RPCPollingBased, config PollConfig) *PollingBased {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.RetryCount <= 0 {
		config.RetryCount = DefaultPollRetryCount
	}
	return &PollingBased{
		polling: waiter,
		config:  config,
	}
}

// Wait polls transaction with the given hash until it's either SUCCESS or
// FAILED and returns the final getTransaction result. ErrTxNotAccepted is
// returned if it's still not found at the deadline.
func (w *PollingBased) Wait(ctx context.Context, hash string, deadline time.Time) (*result.GetTransaction, error) {
	var failedAttempt int

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	for {
		select {
		case <-ticker.C:
			res, err := w.polling.GetTransaction(hash)
			if err != nil {
				failedAttempt++
				if failedAttempt > w.config.RetryCount {
					return nil, fmt.Errorf("failed to retrieve transaction status: %w", err)
				}
				continue
			}
			failedAttempt = 0
			if res.Final() {
				return res, nil
			}
		case <-timer.C:
			return nil, ErrTxNotAccepted
		case <-w.polling.Context().Done():
			return nil, fmt.Errorf("%w: %w", ErrContextDone, w.polling.Context().Err())
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrContextDone, ctx.Err())
		}
	}
}

package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/anataliocs/do-math/pkg/sorobanrpc"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// Client represents the middleman for executing JSON RPC calls to remote
// Stellar RPC nodes. Client is thread-safe and can be used from multiple
// goroutines.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	ctx      context.Context
	opts     Options
	log      *zap.Logger
	requestF func(*sorobanrpc.Request) (*sorobanrpc.Response, error)

	cacheLock sync.RWMutex
	// cache stores RPC node related information the client is bound to.
	cache cache

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request creation.
	// It is defined on Client, so that our testing code can override this method
	// for the sake of more predictable request IDs generation behavior.
	getNextRequestID func() uint64
}

// Options defines options for the RPC client.
// All values are optional. If any duration is not specified,
// a default will be used.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// FriendbotURL is the faucet to request test funds from. If not set,
	// the one advertised by the node via getNetwork is used.
	FriendbotURL string
	// Logger is used for request tracing, no logging is done if it's nil.
	Logger *zap.Logger
}

// cache stores cache values for the RPC client methods.
type cache struct {
	initDone     bool
	passphrase   string
	friendbotURL string
}

// New returns a new Client ready to use. ctx is used for all requests made by
// this client, cancelling it aborts them.
func New(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	cl := new(Client)
	err := initClient(ctx, cl, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func initClient(ctx context.Context, cl *Client, endpoint string, opts Options) error {
	url, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if url.Scheme != "http" && url.Scheme != "https" {
		return fmt.Errorf("unsupported RPC endpoint scheme %q", url.Scheme)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}

	cl.ctx = ctx
	cl.cli = httpClient
	cl.endpoint = url
	cl.log = opts.Logger
	if cl.log == nil {
		cl.log = zap.NewNop()
	}
	cl.cache = cache{friendbotURL: opts.FriendbotURL}
	cl.latestReqID = atomic.NewUint64(0)
	cl.getNextRequestID = (cl).getRequestID
	cl.opts = opts
	cl.requestF = cl.makeHTTPRequest
	return nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Init retrieves and caches the network passphrase and friendbot URL of the
// node the client is connected to.
func (c *Client) Init() error {
	nw, err := c.GetNetwork()
	if err != nil {
		return fmt.Errorf("failed to get network: %w", err)
	}

	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache.passphrase = nw.Passphrase
	if c.cache.friendbotURL == "" {
		c.cache.friendbotURL = nw.FriendbotURL
	}
	c.cache.initDone = true
	return nil
}

// Passphrase returns the network passphrase of the node, Init must be called
// before using it.
func (c *Client) Passphrase() (string, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return "", errNetworkNotInitialized
	}
	return c.cache.passphrase, nil
}

// Context returns the client's context.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Endpoint returns the client's endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close closes unused underlying networks connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

func (c *Client) performRequest(method string, p any, v any) error {
	var r = sorobanrpc.Request{
		JSONRPC: sorobanrpc.JSONRPCVersion,
		Method:  method,
		Params:  p,
		ID:      c.getNextRequestID(),
	}

	start := time.Now()
	raw, err := c.requestF(&r)
	if err == nil && raw != nil && raw.Error != nil {
		err = raw.Error
	}
	addReqMetric(method, time.Since(start), err)
	c.log.Debug("RPC request", zap.String("method", method), zap.Uint64("id", r.ID),
		zap.Duration("took", time.Since(start)), zap.Error(err))

	if err != nil {
		return err
	} else if raw == nil || raw.Result == nil {
		return errors.New("no result returned")
	}
	return json.Unmarshal(raw.Result, v)
}

func (c *Client) makeHTTPRequest(r *sorobanrpc.Request) (*sorobanrpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(sorobanrpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(c.ctx, "POST", c.endpoint.String(), buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The node might send us a proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than HTTP error code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Ping attempts to create a connection to the endpoint
// and returns an error if there is any.
func (c *Client) Ping() error {
	host := c.endpoint.Host
	if c.endpoint.Port() == "" {
		port := "80"
		if c.endpoint.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(c.endpoint.Hostname(), port)
	}
	conn, err := net.DialTimeout("tcp", host, defaultDialTimeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}

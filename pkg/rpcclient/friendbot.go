package rpcclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxFriendbotReply = 64 * 1024

// ErrNoFriendbot is returned from FundAccount if the network has no faucet.
var ErrNoFriendbot = errors.New("no friendbot available for this network")

// FriendbotURL returns the configured friendbot URL or the one advertised by
// the node.
func (c *Client) FriendbotURL() (string, error) {
	c.cacheLock.RLock()
	u := c.cache.friendbotURL
	c.cacheLock.RUnlock()
	if u != "" {
		return u, nil
	}
	nw, err := c.GetNetwork()
	if err != nil {
		return "", fmt.Errorf("failed to get network: %w", err)
	}
	if nw.FriendbotURL == "" {
		return "", ErrNoFriendbot
	}
	c.cacheLock.Lock()
	c.cache.friendbotURL = nw.FriendbotURL
	c.cacheLock.Unlock()
	return nw.FriendbotURL, nil
}

// FundAccount asks the network friendbot to create and fund the given
// account. It fails for already existing accounts.
func (c *Client) FundAccount(address string) error {
	fb, err := c.FriendbotURL()
	if err != nil {
		return err
	}
	u, err := url.Parse(fb)
	if err != nil {
		return fmt.Errorf("bad friendbot URL: %w", err)
	}
	q := u.Query()
	q.Set("addr", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.cli.Do(req)
	addReqMetric("friendbot", time.Since(start), err)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxFriendbotReply))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("friendbot: HTTP %d/%s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), body)
	}
	c.log.Info("account funded", zap.String("address", address))
	return nil
}

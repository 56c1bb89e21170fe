package metrics

import (
	"io"
	"net/http"
	"testing"

	"github.com/anataliocs/do-math/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPrometheusService(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}, zaptest.NewLogger(t))
	require.Equal(t, "Prometheus", s.Name())
	require.NoError(t, s.Start())
	defer s.ShutDown()
	require.NoError(t, s.Start())

	body := get(t, "http://"+s.Addresses()[0]+"/metrics")
	require.Contains(t, body, "go_goroutines")
}

func TestPprofService(t *testing.T) {
	s := NewPprofService(config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	defer s.ShutDown()
	get(t, "http://"+s.Addresses()[0]+"/debug/pprof/")
}

func TestDisabled(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Addresses: []string{"127.0.0.1:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	require.Equal(t, []string{"127.0.0.1:0"}, s.Addresses())
	s.ShutDown()
	require.Nil(t, NewPprofService(config.BasicService{}, nil))
}

//go:build !integration

package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/config"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            "0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

// serve starts s on a loopback port and returns its base URL and the
// channel Serve reports on.
func serve(t *testing.T, ctx context.Context, s *Server) (string, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	return "http://" + ln.Addr().String(), done
}

func TestNewServer(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = "8080"
	cfg.WriteTimeout = 2 * time.Minute

	s := NewServer(http.NotFoundHandler(), cfg)

	assert.Equal(t, ":8080", s.httpServer.Addr)
	assert.Equal(t, time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 2*time.Minute, s.httpServer.WriteTimeout)
	assert.Equal(t, 5*time.Second, s.httpServer.ReadHeaderTimeout)
	assert.Equal(t, time.Second, s.shutdownTimeout)
}

func TestServer_ServeUntilCancelled(t *testing.T) {
	s := NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), testServerConfig())

	var hooked bool
	s.OnShutdown(func(context.Context) error {
		hooked = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	url, done := serve(t, ctx, s)

	resp, err := http.Get(url + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, hooked)

	_, err = http.Get(url + "/healthz")
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = "not-a-port"

	err := NewServer(http.NotFoundHandler(), cfg).Run(context.Background())
	assert.ErrorContains(t, err, "listen on :not-a-port")
}

func TestServer_ShutdownRunsHooks(t *testing.T) {
	s := NewServer(http.NotFoundHandler(), testServerConfig())

	var order []string
	s.OnShutdown(func(context.Context) error {
		order = append(order, "scheduler")
		return nil
	})
	s.OnShutdown(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		order = append(order, "database")
		return errors.New("disconnect failed")
	})

	assert.EqualError(t, s.Shutdown(), "disconnect failed")
	assert.Equal(t, []string{"scheduler", "database"}, order)
}

package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/internal/testutil"
)

func TestNewServer_Config(t *testing.T) {
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8088, ReadTimeout: time.Second}, http.NotFoundHandler(), nil)
	assert.Equal(t, "127.0.0.1:8088", srv.Addr())
	assert.Equal(t, 15*time.Second, srv.shutdownTimeout)
	assert.Equal(t, time.Second, srv.srv.ReadTimeout)
	assert.NotNil(t, srv.Handler())
}

func TestServer_ServeAndGracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	log := testutil.NewMockLogger()
	srv := NewServer(config.ServerConfig{ShutdownTimeout: 2 * time.Second}, handler, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/ping")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, log.HasMessage("info", "HTTP server stopped"))
}

func TestServer_RunListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	srv := NewServer(config.ServerConfig{Host: host}, http.NotFoundHandler(), nil)
	srv.srv.Addr = net.JoinHostPort(host, port)

	err = srv.Run(context.Background())
	assert.Error(t, err)
}

//Personal.AI order the ending

package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listenUDP starts a local UDP listener and returns its address plus a
// channel of received lines.
func listenUDP(t *testing.T) (string, <-chan string) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	lines := make(chan string, 16)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, _, readErr := conn.ReadFrom(buf)
			if readErr != nil {
				return
			}
			lines <- string(buf[:n])
		}
	}()
	return conn.LocalAddr().String(), lines
}

func recvLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case line := <-lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for statsd line")
		return ""
	}
}

func TestClient_CountWithTags(t *testing.T) {
	addr, lines := listenUDP(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		Prefix:     "careconnect.client",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer client.Close()

	client.Count("requests", 1, map[string]string{"outcome": "success"})

	line := recvLine(t, lines)
	assert.Equal(t, "careconnect.client.requests:1|c|#env:test,outcome:success", line)
}

func TestClient_Timing(t *testing.T) {
	addr, lines := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr, Prefix: "careconnect.client"})
	require.NoError(t, err)
	defer client.Close()

	client.Timing("request.duration", 250*time.Millisecond, nil)

	line := recvLine(t, lines)
	assert.Equal(t, "careconnect.client.request.duration:250|ms", line)
}

func TestClient_DisabledIsNoop(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:1"})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		client.Count("requests", 1, nil)
		client.Timing("request.duration", time.Second, nil)
	})
	require.NoError(t, client.Close())
}

func TestClient_NilIsNoop(t *testing.T) {
	var client *Client
	assert.NotPanics(t, func() {
		client.Count("requests", 1, nil)
		client.Timing("request.duration", time.Second, nil)
	})
	assert.NoError(t, client.Close())
}

func TestClient_EmptyMetricNameDropped(t *testing.T) {
	addr, lines := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer client.Close()

	client.Count("  ", 1, nil)
	client.Count("kept", 1, nil)

	assert.Equal(t, "kept:1|c", recvLine(t, lines))
}

package transport

import (
	"context"
	"crypto/tls"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
)

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		raw     string
		network string
		address string
		local   bool
	}{
		{"unix:///run/jade/signer.sock", NetworkUnix, "/run/jade/signer.sock", true},
		{"unix:/tmp/s.sock", NetworkUnix, "/tmp/s.sock", true},
		{"vsock://3:5000", NetworkVsock, "3:5000", true},
		{"vsock:16:8000", NetworkVsock, "16:8000", true},
		{"tcp://127.0.0.1:8550", NetworkTCP, "127.0.0.1:8550", false},
		{"localhost:8550", NetworkTCP, "localhost:8550", false},
	}
	for _, tc := range cases {
		ep, err := ParseEndpoint(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.network, ep.Network, tc.raw)
		require.Equal(t, tc.address, ep.Address, tc.raw)
		require.Equal(t, tc.local, ep.IsLocal(), tc.raw)

		again, err := ParseEndpoint(ep.String())
		require.NoError(t, err)
		require.Equal(t, ep, again)
	}

	for _, bad := range []string{"", "unix:", "vsock:1", "vsock:x:1", "no-port"} {
		_, err := ParseEndpoint(bad)
		require.Error(t, err, bad)
	}
}

func TestListenAndDialUnix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.sock")
	ep, err := ParseEndpoint("unix:" + path)
	require.NoError(t, err)
	lis, err := Listen(ep)
	require.NoError(t, err)
	defer lis.Close()

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("ok"))
		_ = conn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, err := Dial(ctx, ep)
	require.NoError(t, err)
	defer conn.Close()
	buf := make([]byte, 2)
	_, err = conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ok", string(buf))
}

func TestIsSecureChannel(t *testing.T) {
	require.False(t, IsSecureChannel(context.Background()))

	tcp := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1}})
	require.False(t, IsSecureChannel(tcp))

	unix := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.UnixAddr{Name: "/tmp/s", Net: "unix"}})
	require.True(t, IsSecureChannel(unix))

	withTLS := peer.NewContext(context.Background(), &peer.Peer{
		Addr:     &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1},
		AuthInfo: credentials.TLSInfo{State: tls.ConnectionState{}},
	})
	require.True(t, IsSecureChannel(withTLS))
}

func TestBackoffBounds(t *testing.T) {
	b := NewBackoff(BackoffConfig{Initial: 10 * time.Millisecond, Max: 80 * time.Millisecond})
	var last time.Duration
	for i := 0; i < 6; i++ {
		last = b.Next()
		require.GreaterOrEqual(t, last, 10*time.Millisecond)
		require.LessOrEqual(t, last, 80*time.Millisecond)
	}
	require.Equal(t, 80*time.Millisecond, last)
	b.Reset()
	require.Equal(t, 10*time.Millisecond, b.Next())
}

func TestEndpointRemote(t *testing.T) {
	cases := map[string]bool{
		"unix:///tmp/jadesigner.sock": false,
		"vsock:3:7000":                false,
		"0.0.0.0:7000":                false,
		"[::]:7000":                   false,
		":7000":                       false,
		"10.0.0.5:7000":               true,
		"signer.internal:7000":        true,
		"127.0.0.1:7000":              true,
	}
	for raw, want := range cases {
		ep, err := ParseEndpoint(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, ep.Remote(), raw)
	}
}

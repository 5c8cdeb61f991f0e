//go:build linux || darwin

package transport_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-cio/api"
	"github.com/momentics/hioload-cio/internal/testutil"
	"github.com/momentics/hioload-cio/reactor"
	"github.com/momentics/hioload-cio/transport"
)

const (
	tokenListener = iota + 1
	tokenStream
)

const eventTimeout = 2 * time.Second

func bindLoopback(t *testing.T) (*transport.Listener, string) {
	t.Helper()
	ln, err := transport.Bind("tcp://127.0.0.1:0", transport.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	addr, err := ln.LocalAddr()
	require.NoError(t, err)
	return ln, "tcp://" + addr
}

// socketDir returns a directory short enough for sun_path limits.
func socketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "cio")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func newReactor(t *testing.T) *reactor.Reactor[any] {
	t.Helper()
	r, err := reactor.New[any](reactor.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// connectPair returns a connected client and the matching accepted stream.
func connectPair(t *testing.T) (client, server *transport.Stream) {
	t.Helper()
	ln, addr := bindLoopback(t)
	client, err := transport.Connect(addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	r := newReactor(t)
	require.NoError(t, r.Register(ln.Fd(), tokenListener, reactor.FlagReadable, ln))
	testutil.PollUntil(t, r, eventTimeout)
	server, err = ln.Accept()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return client, server
}

func TestScenario_ListenerReadableOnConnect(t *testing.T) {
	ln, addr := bindLoopback(t)
	r := newReactor(t)
	require.NoError(t, r.Register(ln.Fd(), tokenListener, reactor.FlagReadable, ln))

	require.NoError(t, r.Poll(time.Millisecond))
	assert.Empty(t, testutil.Drain(r))

	client, err := transport.Connect(addr)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, transport.KindConnect, client.Kind())

	evs := testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	assert.Equal(t, tokenListener, evs[0].Token())
	assert.True(t, evs[0].Readable())
	assert.Same(t, ln, evs[0].Wrapper())

	s, err := ln.Accept()
	require.NoError(t, err)
	defer s.Close()
	assert.NotEqual(t, ln.Fd(), s.Fd())
	assert.Equal(t, transport.KindAccept, s.Kind())
	assert.Equal(t, ln.Addr(), s.Addr())
}

func TestScenario_WriteOnceThenReadOnly(t *testing.T) {
	client, server := connectPair(t)
	r := newReactor(t)
	require.NoError(t, r.Register(client.Fd(), tokenStream, reactor.FlagReadable|reactor.FlagWritable, client))

	require.NoError(t, r.Poll(time.Millisecond))
	evs := testutil.Drain(r)
	require.Len(t, evs, 1)
	require.True(t, evs[0].Writable())
	assert.False(t, evs[0].Readable())

	n, err := client.Send([]byte("from client"))
	require.NoError(t, err)
	assert.Equal(t, len("from client"), n)
	require.NoError(t, r.Register(client.Fd(), tokenStream, reactor.FlagReadable, client))

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Poll(time.Millisecond))
		assert.Empty(t, testutil.Drain(r), "socket stays writable but is no longer watched")
	}

	// The reply arrives as a readable event without the writable bit.
	srv := newReactor(t)
	require.NoError(t, srv.Register(server.Fd(), tokenStream, reactor.FlagReadable, server))
	testutil.PollUntil(t, srv, eventTimeout)
	buf := make([]byte, 64)
	n, err = server.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, "from client", string(buf[:n]))
	_, err = server.Send([]byte("from server"))
	require.NoError(t, err)

	evs = testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Readable())
	assert.False(t, evs[0].Writable())
	n, err = client.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, "from server", string(buf[:n]))
}

func TestScenario_PeerShutdown(t *testing.T) {
	client, server := connectPair(t)
	r := newReactor(t)
	require.NoError(t, r.Register(client.Fd(), tokenStream, reactor.FlagReadable, client))

	require.NoError(t, server.Close())

	evs := testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	s := evs[0].Wrapper().(*transport.Stream)
	n, err := s.Recv(make([]byte, 16))
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.Unregister(s.Fd()))
	require.NoError(t, s.Close())
	assert.Equal(t, -1, s.Fd())
}

func TestRecv_WouldBlockIsReturnedVerbatim(t *testing.T) {
	client, _ := connectPair(t)
	n, err := client.Recv(make([]byte, 16))
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, unix.EAGAIN)
}

func TestStream_ClosedOperations(t *testing.T) {
	client, _ := connectPair(t)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	n, err := client.Send([]byte("x"))
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, api.ErrClosed)
	_, err = client.Recv(make([]byte, 1))
	assert.ErrorIs(t, err, api.ErrClosed)
}

func TestAccept_NothingPending(t *testing.T) {
	ln, _ := bindLoopback(t)
	_, err := ln.Accept()
	assert.ErrorIs(t, err, unix.EAGAIN)
}

func TestConnect_RefusedLeaksNothing(t *testing.T) {
	ln, addr := bindLoopback(t)
	require.NoError(t, ln.Close())

	before := testutil.OpenFDs(t)
	s, err := transport.Connect(addr)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, unix.ECONNREFUSED)
	assert.Equal(t, before, testutil.OpenFDs(t))
}

func TestBind_AddressInUse(t *testing.T) {
	ln, _ := bindLoopback(t)
	addr, err := ln.LocalAddr()
	require.NoError(t, err)

	before := testutil.OpenFDs(t)
	_, err = transport.Bind("tcp://" + addr)
	assert.ErrorIs(t, err, unix.EADDRINUSE)
	assert.Equal(t, before, testutil.OpenFDs(t))
}

func TestBind_RejectsSerial(t *testing.T) {
	_, err := transport.Bind("com:///dev/ttyS0")
	assert.ErrorIs(t, err, api.ErrNotSupported)
}

func TestConnect_BadPort(t *testing.T) {
	_, err := transport.Connect("tcp://127.0.0.1:99999")
	assert.ErrorIs(t, err, api.ErrInvalidAddress)
	_, err = transport.Connect("tcp://127.0.0.1")
	assert.ErrorIs(t, err, api.ErrInvalidAddress)
}

func TestUnixListener_Lifecycle(t *testing.T) {
	path := filepath.Join(socketDir(t), "cio.sock")
	// A leftover file at the path is replaced by Bind.
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := transport.Bind("unix://" + path)
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, fi.Mode().Type())

	r := newReactor(t)
	require.NoError(t, r.Register(ln.Fd(), tokenListener, reactor.FlagReadable, ln))

	client, err := transport.Connect("unix://" + path)
	require.NoError(t, err)
	defer client.Close()

	evs := testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	server, err := ln.Accept()
	require.NoError(t, err)
	defer server.Close()
	assert.Equal(t, path, server.Addr())

	_, err = client.Send([]byte("over unix"))
	require.NoError(t, err)
	require.NoError(t, r.Register(server.Fd(), tokenStream, reactor.FlagReadable, server))
	evs = testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	assert.Equal(t, tokenStream, evs[0].Token())
	buf := make([]byte, 32)
	n, err := server.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, "over unix", string(buf[:n]))

	require.NoError(t, r.Unregister(ln.Fd()))
	require.NoError(t, ln.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUnixConnect_MissingPath(t *testing.T) {
	before := testutil.OpenFDs(t)
	_, err := transport.Connect("unix://" + filepath.Join(socketDir(t), "absent"))
	assert.Error(t, err)
	assert.Equal(t, before, testutil.OpenFDs(t))
}

// exchange connects to the listener, accepts and checks one payload.
func exchange(t *testing.T, ln *transport.Listener, addr string) {
	t.Helper()
	client, err := transport.Connect(addr)
	require.NoError(t, err)
	defer client.Close()

	r := newReactor(t)
	require.NoError(t, r.Register(ln.Fd(), tokenListener, reactor.FlagReadable, ln))
	testutil.PollUntil(t, r, eventTimeout)
	server, err := ln.Accept()
	require.NoError(t, err)
	defer server.Close()

	_, err = client.Send([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, r.Register(server.Fd(), tokenStream, reactor.FlagReadable, server))
	evs := testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	buf := make([]byte, 16)
	n, err := server.Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestTCP_HostNameResolution(t *testing.T) {
	ln, err := transport.Bind("tcp://localhost:0")
	require.NoError(t, err)
	defer ln.Close()
	local, err := ln.LocalAddr()
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(local)
	require.NoError(t, err)

	exchange(t, ln, "tcp://localhost:"+port)
}

func TestTCP_IPv6Loopback(t *testing.T) {
	ln, err := transport.Bind("tcp://[::1]:0")
	if err != nil {
		t.Skipf("IPv6 loopback unavailable: %v", err)
	}
	defer ln.Close()
	local, err := ln.LocalAddr()
	require.NoError(t, err)
	host, _, err := net.SplitHostPort(local)
	require.NoError(t, err)
	assert.Equal(t, "::1", host)

	exchange(t, ln, "tcp://"+local)
}

func TestBind_WithBacklog(t *testing.T) {
	ln, err := transport.Bind("tcp://127.0.0.1:0", transport.WithBacklog(4))
	require.NoError(t, err)
	defer ln.Close()
	local, err := ln.LocalAddr()
	require.NoError(t, err)

	exchange(t, ln, "tcp://"+local)
}

func TestUnixListener_CloseAfterFileRemoved(t *testing.T) {
	path := filepath.Join(socketDir(t), "gone.sock")
	ln, err := transport.Bind("unix://" + path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	assert.NoError(t, ln.Close())
	assert.Equal(t, -1, ln.Fd())
}

//go:build linux

package transport_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-cio/api"
	"github.com/momentics/hioload-cio/internal/testutil"
	"github.com/momentics/hioload-cio/reactor"
	"github.com/momentics/hioload-cio/transport"
)

// openPty returns the master descriptor and the slave device path.
func openPty(t *testing.T) (int, string) {
	t.Helper()
	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() { _ = unix.Close(master) })
	require.NoError(t, unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	require.NoError(t, err)
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func TestSerial_MissingDeviceLeaksNothing(t *testing.T) {
	before := testutil.OpenFDs(t)
	s, err := transport.Connect("com://bad-device?baud=9600")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, unix.ENOENT)
	assert.Equal(t, before, testutil.OpenFDs(t))
}

func TestSerial_ConfigureFailureClosesDescriptor(t *testing.T) {
	before := testutil.OpenFDs(t)
	s, err := transport.Connect("com:///dev/null?baud=9600")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.Equal(t, before, testutil.OpenFDs(t))
}

func TestSerial_BadParamsRejectedBeforeOpen(t *testing.T) {
	_, slave := openPty(t)
	before := testutil.OpenFDs(t)
	for _, params := range []string{"baud=12345", "data_bit=9", "stop_bit=3", "parity=x"} {
		_, err := transport.Connect("com://" + slave + "?" + params)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, params)
	}
	assert.Equal(t, before, testutil.OpenFDs(t))
}

func TestSerial_LineConfiguration(t *testing.T) {
	_, slave := openPty(t)
	s, err := transport.Connect("com://" + slave + "?baud=19200&data_bit=7&parity=E&stop_bit=2")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, slave, s.Addr())
	assert.Equal(t, transport.KindConnect, s.Kind())

	tio, err := unix.IoctlGetTermios(s.Fd(), unix.TCGETS)
	require.NoError(t, err)
	assert.Equal(t, uint32(unix.B19200), tio.Cflag&unix.CBAUD)
	assert.Equal(t, uint32(unix.CS7), tio.Cflag&unix.CSIZE)
	assert.NotZero(t, tio.Cflag&unix.PARENB)
	assert.Zero(t, tio.Cflag&unix.PARODD)
	assert.NotZero(t, tio.Cflag&unix.CSTOPB)
	assert.NotZero(t, tio.Cflag&unix.CLOCAL)
	assert.NotZero(t, tio.Cflag&unix.CREAD)
	assert.Zero(t, tio.Lflag&(unix.ICANON|unix.ECHO|unix.ISIG))
	assert.Zero(t, tio.Oflag&unix.OPOST)
	assert.Zero(t, tio.Iflag&(unix.IXON|unix.IXOFF))
	assert.Zero(t, tio.Cc[unix.VMIN])
	assert.Zero(t, tio.Cc[unix.VTIME])

	flags, err := unix.FcntlInt(uintptr(s.Fd()), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)
}

func TestSerial_ExchangeThroughReactor(t *testing.T) {
	master, slave := openPty(t)
	s, err := transport.Connect("com://" + slave)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Recv(make([]byte, 8))
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, unix.EAGAIN)

	_, err = s.Send([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err = unix.Read(master, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	r, err := reactor.New[*transport.Stream]()
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Register(s.Fd(), 7, reactor.FlagReadable, s))

	_, err = unix.Write(master, []byte("pong"))
	require.NoError(t, err)
	evs := testutil.PollUntil(t, r, eventTimeout)
	require.Len(t, evs, 1)
	assert.Equal(t, 7, evs[0].Token())
	n, err = evs[0].Wrapper().Recv(buf)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf[:n]))
}

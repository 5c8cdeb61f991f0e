//go:build linux

// File: transport/serial_linux.go
// Author: momentics <momentics@gmail.com>
//
// Serial line streams configured through termios ioctls.

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var serialStreamOps = operations{
	name:  "com",
	close: closeDescriptor,
	send:  fdWrite,
	recv:  fdRead,
}

var baudTable = map[int]uint32{
	110:    unix.B110,
	300:    unix.B300,
	600:    unix.B600,
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
}

var dataBitTable = map[int]uint32{
	5: unix.CS5,
	6: unix.CS6,
	7: unix.CS7,
	8: unix.CS8,
}

func serialConnect(device string, cfg SerialConfig) (*conn, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", device, err)
	}
	if err := applyLine(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: configure %s: %w", device, err)
	}
	return &conn{fd: fd, addr: device, kind: KindConnect, ops: &serialStreamOps}, nil
}

// applyLine puts the line in raw, fully non-blocking mode with the given
// framing. Nothing reaches the device until the final TCSETS.
func applyLine(fd int, cfg SerialConfig) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("tcgetattr: %w", err)
	}

	t.Cflag |= unix.CLOCAL | unix.CREAD
	t.Cflag &^= unix.CSIZE

	speed, ok := baudTable[cfg.Baud]
	if !ok {
		return badParam("baud", fmt.Sprint(cfg.Baud))
	}
	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed
	t.Ispeed = speed
	t.Ospeed = speed

	size, ok := dataBitTable[cfg.DataBits]
	if !ok {
		return badParam("data_bit", fmt.Sprint(cfg.DataBits))
	}
	t.Cflag |= size

	switch cfg.Parity {
	case ParityNone:
		t.Cflag &^= unix.PARENB | unix.PARODD
		t.Iflag &^= unix.INPCK
	case ParityEven:
		t.Cflag |= unix.PARENB
		t.Cflag &^= unix.PARODD
		t.Iflag |= unix.INPCK
	case ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
		t.Iflag |= unix.INPCK
	default:
		return badParam("parity", cfg.Parity.String())
	}

	switch cfg.StopBits {
	case 1:
		t.Cflag &^= unix.CSTOPB
	case 2:
		t.Cflag |= unix.CSTOPB
	default:
		return badParam("stop_bit", fmt.Sprint(cfg.StopBits))
	}

	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	t.Oflag &^= unix.OPOST
	t.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	t.Cc[unix.VTIME] = 0
	t.Cc[unix.VMIN] = 0

	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		return fmt.Errorf("tcflush: %w", err)
	}
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("tcsetattr: %w", err)
	}
	return nil
}

func fdWrite(c *conn, p []byte) (int, error) {
	n, err := unix.Write(c.fd, p)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func fdRead(c *conn, p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		return -1, err
	}
	return n, nil
}

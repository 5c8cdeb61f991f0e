//go:build linux || darwin

// File: transport/socket_unix.go
// Author: momentics <momentics@gmail.com>
//
// TCP and Unix-domain stream sockets on raw descriptors.

package transport

import (
	"fmt"
	"net"
	"strconv"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-cio/api"
)

var tcpStreamOps = operations{
	name:  "tcp",
	close: closeDescriptor,
	send:  sockSend,
	recv:  sockRecv,
}

var tcpListenerOps = operations{
	name:   "tcp",
	close:  closeDescriptor,
	accept: tcpAccept,
}

var unixStreamOps = operations{
	name:  "unix",
	close: closeDescriptor,
	send:  sockSend,
	recv:  sockRecv,
}

var unixListenerOps = operations{
	name:   "unix",
	close:  closeAndUnlink,
	accept: unixAccept,
}

func tcpConnect(endpoint string) (*conn, error) {
	sa, family, err := resolveTCP(endpoint)
	if err != nil {
		return nil, err
	}
	fd, err := newSocket(family)
	if err != nil {
		return nil, err
	}
	if err := connectSocket(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: connect %s: %w", endpoint, err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return &conn{fd: fd, addr: endpoint, kind: KindConnect, ops: &tcpStreamOps}, nil
}

func tcpBind(endpoint string, backlog int) (*conn, error) {
	sa, family, err := resolveTCP(endpoint)
	if err != nil {
		return nil, err
	}
	fd, err := newSocket(family)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := listenSocket(fd, sa, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: listen %s: %w", endpoint, err)
	}
	return &conn{fd: fd, addr: endpoint, kind: KindListen, ops: &tcpListenerOps}, nil
}

func tcpAccept(l *conn) (*conn, error) {
	fd, err := acceptSocket(l.fd)
	if err != nil {
		return nil, err
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return &conn{fd: fd, addr: l.addr, kind: KindAccept, ops: &tcpStreamOps}, nil
}

func unixConnect(path string) (*conn, error) {
	fd, err := newSocket(unix.AF_UNIX)
	if err != nil {
		return nil, err
	}
	if err := connectSocket(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: connect %s: %w", path, err)
	}
	return &conn{fd: fd, addr: path, kind: KindConnect, ops: &unixStreamOps}, nil
}

func unixBind(path string, backlog int) (*conn, error) {
	fd, err := newSocket(unix.AF_UNIX)
	if err != nil {
		return nil, err
	}
	// A stale socket file from a previous run would make bind fail.
	_ = unix.Unlink(path)
	if err := listenSocket(fd, &unix.SockaddrUnix{Name: path}, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: listen %s: %w", path, err)
	}
	return &conn{fd: fd, addr: path, kind: KindListen, ops: &unixListenerOps}, nil
}

func unixAccept(l *conn) (*conn, error) {
	fd, err := acceptSocket(l.fd)
	if err != nil {
		return nil, err
	}
	return &conn{fd: fd, addr: l.addr, kind: KindAccept, ops: &unixStreamOps}, nil
}

func newSocket(family int) (int, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("transport: socket: %w", err)
	}
	unix.CloseOnExec(fd)
	if err := setNoSigpipe(fd); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: setsockopt: %w", err)
	}
	return fd, nil
}

// connectSocket connects in non-blocking mode and waits for completion, so
// a signal cannot leave the attempt half done.
func connectSocket(fd int, sa unix.Sockaddr) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return err
	}
	err := unix.Connect(fd, sa)
	switch err {
	case nil:
		return nil
	case unix.EINPROGRESS, unix.EINTR:
	default:
		return err
	}

	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		_, err := unix.Poll(pfd, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		break
	}
	soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soerr != 0 {
		return unix.Errno(soerr)
	}
	return nil
}

func listenSocket(fd int, sa unix.Sockaddr, backlog int) error {
	if err := unix.Bind(fd, sa); err != nil {
		return err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return err
	}
	return unix.SetNonblock(fd, true)
}

func acceptSocket(lfd int) (int, error) {
	for {
		fd, _, err := unix.Accept(lfd)
		if err == unix.EINTR || err == unix.ECONNABORTED {
			continue
		}
		if err != nil {
			return -1, fmt.Errorf("transport: accept: %w", err)
		}
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("transport: accept: %w", err)
		}
		if err := setNoSigpipe(fd); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("transport: accept: %w", err)
		}
		return fd, nil
	}
}

func resolveTCP(endpoint string) (unix.Sockaddr, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, 0, invalidAddress(endpoint, err.Error())
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, 0, invalidAddress(endpoint, "bad port")
	}

	var ip net.IP
	switch {
	case host == "":
		ip = net.IPv4zero
	case net.ParseIP(host) != nil:
		ip = net.ParseIP(host)
	default:
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, 0, invalidAddress(endpoint, "cannot resolve host")
		}
		ip = ips[0]
		for _, cand := range ips {
			if cand.To4() != nil {
				ip = cand
				break
			}
		}
	}

	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return sa, unix.AF_INET, nil
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip.To16())
	return sa, unix.AF_INET6, nil
}

func localAddr(fd int) (string, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", fmt.Errorf("transport: getsockname: %w", err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port)), nil
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port)), nil
	case *unix.SockaddrUnix:
		return a.Name, nil
	}
	return "", api.ErrNotSupported
}

func sockSend(c *conn, p []byte) (int, error) {
	n, err := unix.SendmsgN(c.fd, p, nil, nil, sendFlags)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func sockRecv(c *conn, p []byte) (int, error) {
	n, _, err := unix.Recvfrom(c.fd, p, 0)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func closeDescriptor(c *conn) error {
	return unix.Close(c.fd)
}

// closeAndUnlink removes the socket file and closes the descriptor. A file
// that is already gone is not an error.
func closeAndUnlink(c *conn) error {
	err := unix.Unlink(c.addr)
	if err == unix.ENOENT {
		err = nil
	}
	return multierr.Append(err, unix.Close(c.fd))
}

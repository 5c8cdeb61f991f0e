//go:build darwin

// File: transport/socket_darwin.go
// Author: momentics <momentics@gmail.com>

package transport

import "golang.org/x/sys/unix"

const sendFlags = 0

// setNoSigpipe stands in for MSG_NOSIGNAL, which Darwin sockets lack.
func setNoSigpipe(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}

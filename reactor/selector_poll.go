//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// File: reactor/selector_poll.go
// Author: momentics <momentics@gmail.com>
//
// poll(2)-based Selector. The descriptor list is built per call, so there is
// no FD_SETSIZE ceiling on descriptor values.

package reactor

import (
	"golang.org/x/sys/unix"
)

// PollSelector implements Selector with a zero-timeout poll(2).
type PollSelector struct {
	pfds []unix.PollFd
}

// NewSelector returns the default Selector for this platform.
func NewSelector() Selector {
	return &PollSelector{}
}

// Select queries fds for the readiness in want. EOF, hang-up and pending
// errors count as ready in either direction, matching select(2).
func (s *PollSelector) Select(fds []int, want Flags) (map[int]struct{}, error) {
	if len(fds) == 0 {
		return nil, nil
	}

	var events, mask int16
	if want&FlagReadable != 0 {
		events |= unix.POLLIN
		mask |= unix.POLLIN | unix.POLLHUP | unix.POLLERR
	}
	if want&FlagWritable != 0 {
		events |= unix.POLLOUT
		mask |= unix.POLLOUT | unix.POLLHUP | unix.POLLERR
	}

	s.pfds = s.pfds[:0]
	for _, fd := range fds {
		s.pfds = append(s.pfds, unix.PollFd{Fd: int32(fd), Events: events})
	}

	n, err := unix.Poll(s.pfds, 0)
	if err != nil {
		if err == unix.EINTR {
			return nil, ErrInterrupted
		}
		return nil, err
	}

	ready := make(map[int]struct{}, n)
	for _, p := range s.pfds {
		if p.Revents&unix.POLLNVAL != 0 {
			// select(2) rejects the whole set on a closed descriptor.
			return nil, unix.EBADF
		}
		if p.Revents&mask != 0 {
			ready[int(p.Fd)] = struct{}{}
		}
	}
	return ready, nil
}

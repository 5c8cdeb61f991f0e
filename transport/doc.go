// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport implements descriptor-backed streams and listeners over
// TCP, Unix-domain sockets and serial lines, addressed by URL-like strings:
//
//	tcp://127.0.0.1:3824
//	unix:///tmp/cio
//	com:///dev/ttyUSB0?baud=115200&data_bit=8&stop_bit=1&parity=n
//
// Every object exposes its raw descriptor so it can be registered with a
// reactor. Send and Recv perform exactly one system call and return its
// result unchanged; would-block handling and partial writes are left to the
// caller's event loop. All descriptors are put in non-blocking mode once
// established.
package transport

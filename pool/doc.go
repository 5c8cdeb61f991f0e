// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer and object reuse for receive loops built on the reactor.
// Pools are safe for concurrent use, so loops on different threads may
// share one.
package pool

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides a single-threaded readiness reactor that layers
// edge-style notifications over a level-triggered readiness query.
//
// The caller owns the loop:
//
//	r, _ := reactor.New[*transport.Stream]()
//	_ = r.Register(s.Fd(), tokenConn, reactor.FlagReadable|reactor.FlagWritable, s)
//	for {
//		if err := r.Poll(100 * time.Millisecond); err != nil {
//			return err
//		}
//		for ev, ok := r.Next(); ok; ev, ok = r.Next() {
//			// inspect ev.Token(), ev.Readable(), ev.Writable(), ev.Wrapper()
//		}
//	}
//
// Readability is reported on every cycle it is asserted; writability only
// on its 0->1 transition. Events returned by Next stay valid until the next
// Poll. A Reactor performs no locking and must be confined to one goroutine;
// run one Reactor per worker thread to scale out.
package reactor

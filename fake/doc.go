// Package fake
// Author: momentics <momentics@gmail.com>
//
// Test doubles for driving a reactor without real descriptors or real
// time: a scripted readiness source and a clock that records sleeps.
package fake

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package control exposes runtime metrics for reactor instances.
//
// Metrics are registered on a caller-supplied prometheus.Registerer so
// several reactors (one per worker thread) can either share one collector
// set or keep separate ones.
package control

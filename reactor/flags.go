// File: reactor/flags.go
// Author: momentics <momentics@gmail.com>

package reactor

import "strings"

// Flags selects the readiness a registration is interested in.
type Flags uint8

const (
	FlagReadable Flags = 1 << iota
	FlagWritable
)

const flagMask = FlagReadable | FlagWritable

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&FlagReadable != 0 {
		parts = append(parts, "readable")
	}
	if f&FlagWritable != 0 {
		parts = append(parts, "writable")
	}
	if f&^flagMask != 0 {
		parts = append(parts, "invalid")
	}
	return strings.Join(parts, "|")
}

// Readiness is the snapshot observed for a descriptor in one poll cycle.
type Readiness struct {
	Readable bool
	Writable bool
}

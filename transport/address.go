// File: transport/address.go
// Author: momentics <momentics@gmail.com>
//
// scheme://endpoint[?params] address grammar.

package transport

import (
	"strings"

	"github.com/momentics/hioload-cio/api"
)

// Scheme names a transport family.
type Scheme string

const (
	SchemeTCP    Scheme = "tcp"
	SchemeUnix   Scheme = "unix"
	SchemeSerial Scheme = "com"
)

// Address is a parsed transport address.
type Address struct {
	Scheme   Scheme
	Endpoint string // host:port, filesystem path or device path
	Params   string // raw parameter list, serial only
}

func (a Address) String() string {
	s := string(a.Scheme) + "://" + a.Endpoint
	if a.Params != "" {
		s += "?" + a.Params
	}
	return s
}

// ParseAddress splits s into scheme, endpoint and parameters. Only the com
// scheme carries parameters; for tcp and unix a '?' is part of the endpoint.
func ParseAddress(s string) (Address, error) {
	i := strings.Index(s, "://")
	if i <= 0 {
		return Address{}, invalidAddress(s, "missing scheme")
	}
	a := Address{
		Scheme:   Scheme(strings.ToLower(s[:i])),
		Endpoint: s[i+len("://"):],
	}
	switch a.Scheme {
	case SchemeTCP, SchemeUnix:
	case SchemeSerial:
		if j := strings.IndexByte(a.Endpoint, '?'); j >= 0 {
			a.Endpoint, a.Params = a.Endpoint[:j], a.Endpoint[j+1:]
		}
	default:
		return Address{}, invalidAddress(s, "unsupported scheme")
	}
	if a.Endpoint == "" {
		return Address{}, invalidAddress(s, "empty endpoint")
	}
	return a, nil
}

func invalidAddress(addr, reason string) error {
	return api.NewError(api.ErrCodeInvalidAddress, "transport: "+reason).
		WithContext("addr", addr)
}

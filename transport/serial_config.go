// File: transport/serial_config.go
// Author: momentics <momentics@gmail.com>
//
// Serial line parameter grammar: key=value pairs separated by '&' or
// spaces, values optionally quoted.

package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/momentics/hioload-cio/api"
)

// Parity selects the serial parity mode.
type Parity byte

const (
	ParityNone Parity = 'n'
	ParityEven Parity = 'e'
	ParityOdd  Parity = 'o'
)

func (p Parity) String() string { return string(p) }

// SerialConfig is the line setup applied when a com:// stream is opened.
type SerialConfig struct {
	Baud     int
	DataBits int
	StopBits int
	Parity   Parity
}

// DefaultSerialConfig is 9600 8N1.
var DefaultSerialConfig = SerialConfig{
	Baud:     9600,
	DataBits: 8,
	StopBits: 1,
	Parity:   ParityNone,
}

// SupportedBauds lists the accepted line rates in ascending order.
var SupportedBauds = []int{110, 300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// Validate checks every field against the supported tables.
func (c SerialConfig) Validate() error {
	if !isSupportedBaud(c.Baud) {
		return badParam("baud", strconv.Itoa(c.Baud))
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return badParam("data_bit", strconv.Itoa(c.DataBits))
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return badParam("stop_bit", strconv.Itoa(c.StopBits))
	}
	switch c.Parity {
	case ParityNone, ParityEven, ParityOdd:
	default:
		return badParam("parity", string(c.Parity))
	}
	return nil
}

func (c SerialConfig) String() string {
	return fmt.Sprintf("%d %d%c%d", c.Baud, c.DataBits, strings.ToUpper(string(c.Parity))[0], c.StopBits)
}

// ParseSerialConfig reads params on top of DefaultSerialConfig. Unknown keys
// are ignored; a recognized key with a bad value is an error.
func ParseSerialConfig(params string) (SerialConfig, error) {
	cfg := DefaultSerialConfig
	pairs, err := splitParams(params)
	if err != nil {
		return cfg, err
	}
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		value = unquote(value)
		switch key {
		case "baud":
			if cfg.Baud, err = strconv.Atoi(value); err != nil {
				return cfg, badParam(key, value)
			}
		case "data_bit":
			if cfg.DataBits, err = strconv.Atoi(value); err != nil {
				return cfg, badParam(key, value)
			}
		case "stop_bit":
			if cfg.StopBits, err = strconv.Atoi(value); err != nil {
				return cfg, badParam(key, value)
			}
		case "parity":
			if len(value) != 1 {
				return cfg, badParam(key, value)
			}
			cfg.Parity = Parity(strings.ToLower(value)[0])
		}
	}
	return cfg, cfg.Validate()
}

// splitParams cuts s at '&' and spaces that are not inside quotes.
func splitParams(s string) ([]string, error) {
	var (
		out   []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			cur.WriteByte(ch)
		case ch == '&' || ch == ' ':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "transport: unterminated quote in serial params").
			WithContext("params", s)
	}
	flush()
	return out, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func isSupportedBaud(b int) bool {
	for _, s := range SupportedBauds {
		if s == b {
			return true
		}
	}
	return false
}

func badParam(key, value string) error {
	return api.NewError(api.ErrCodeInvalidArgument, "transport: unsupported serial parameter").
		WithContext("key", key).
		WithContext("value", value)
}

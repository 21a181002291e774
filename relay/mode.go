/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package relay

import "strings"

// Mode selects how a listener treats accepted connections.
type Mode uint8

const (
	// ModeEmpty is the zero value, not a valid listener mode.
	ModeEmpty Mode = iota
	// ModeSimpleClient accepts local cleartext and obfuscates toward a
	// fixed remote target.
	ModeSimpleClient
	// ModeSimpleServer accepts remote obfuscated traffic and forwards
	// cleartext to a fixed target.
	ModeSimpleServer
	// ModeSocksClient negotiates SOCKS5 locally, then obfuscates toward
	// the requested target.
	ModeSocksClient
)

// Parse returns the mode matching the given string, case insensitive.
// Unknown strings map to ModeEmpty.
func Parse(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "simple-client":
		return ModeSimpleClient
	case "server", "simple-server":
		return ModeSimpleServer
	case "socks", "socks-client":
		return ModeSocksClient
	}

	return ModeEmpty
}

// ParseInt returns the mode matching the given numeric code.
func ParseInt(i int) Mode {
	switch Mode(i) {
	case ModeSimpleClient, ModeSimpleServer, ModeSocksClient:
		return Mode(i)
	}

	return ModeEmpty
}

// Code returns the canonical configuration string of the mode, or an
// empty string for an invalid mode.
func (m Mode) Code() string {
	switch m {
	case ModeSimpleClient:
		return "client"
	case ModeSimpleServer:
		return "server"
	case ModeSocksClient:
		return "socks"
	}

	return ""
}

// String returns the same canonical string as Code.
func (m Mode) String() string {
	return m.Code()
}

// Int returns the numeric code of the mode, or 0 for an invalid mode.
func (m Mode) Int() int {
	switch m {
	case ModeSimpleClient, ModeSimpleServer, ModeSocksClient:
		return int(m)
	}

	return 0
}

// IsValid reports whether the mode is one of the three listener modes.
func (m Mode) IsValid() bool {
	return m.Int() > 0
}

// HasFixedTarget reports whether the mode requires a configured target
// address. SOCKS resolves its target per connection instead.
func (m Mode) HasFixedTarget() bool {
	return m == ModeSimpleClient || m == ModeSimpleServer
}

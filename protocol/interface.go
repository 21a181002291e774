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

package protocol

import (
	"bytes"
	"io"

	liberr "github.com/nabbar/golib/errors"
)

// Role indicates which end of the obfuscated link a plugin instance
// serves. A client emits the handshake prelude and obfuscates outbound
// data; a server consumes the prelude and deobfuscates inbound data.
type Role uint8

const (
	// RoleClient is the initiating end of the obfuscated link.
	RoleClient Role = iota
	// RoleServer is the accepting end of the obfuscated link.
	RoleServer
)

// String returns a human readable form of the role.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}

	return "unknown role"
}

// RecvResult is the outcome of a Plugin Recv call.
type RecvResult uint8

const (
	// RecvOK means the input has been consumed as far as possible and the
	// engine has nothing more to do this turn.
	RecvOK RecvResult = iota
	// RecvSendPending means the plugin wants to emit bytes in the reverse
	// direction immediately (a protocol level acknowledgement, for
	// instance). The engine must follow up with a Send call in the same
	// turn.
	RecvSendPending
	// RecvBad means the obfuscated stream is unrecoverable and the
	// connection must be closed.
	RecvBad
)

// String returns a human readable form of the recv result.
func (r RecvResult) String() string {
	switch r {
	case RecvOK:
		return "ok"
	case RecvSendPending:
		return "send pending"
	case RecvBad:
		return "bad"
	}

	return "unknown recv result"
}

// Plugin is the per-connection obfuscation state. All methods are called
// from the connection's dispatch loop, so implementations need no
// locking. Buffers handed to a method are owned by the engine: a method
// consumes from its input buffer and appends to its output buffer, never
// retaining either.
type Plugin interface {
	io.Closer

	// Handshake optionally appends an initial handshake payload to out.
	// It is called exactly once, before any application data flows.
	Handshake(out *bytes.Buffer) error

	// Send consumes cleartext from in and appends the obfuscated form
	// to out.
	Send(in, out *bytes.Buffer) error

	// Recv consumes obfuscated bytes from in and appends the recovered
	// cleartext to out.
	Recv(in, out *bytes.Buffer) (RecvResult, error)
}

// FuncFactory builds a plugin instance for one connection. The opt map is
// the opaque protocol options blob from the listener configuration;
// factories usually decode it with mapstructure into a typed struct.
type FuncFactory func(role Role, opt map[string]interface{}) (Plugin, liberr.Error)

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

package socks

import (
	"bytes"
	"net"
)

// Address type codes from RFC 1928.
const (
	AddrIPv4   byte = 0x01
	AddrDomain byte = 0x03
	AddrIPv6   byte = 0x04
)

// Negotiator is the per-connection SOCKS5 state machine. It is not
// safe for concurrent use; the relay engine drives it from one dispatch
// loop.
type Negotiator interface {
	// Status returns the current negotiation stage.
	Status() Status

	// Handle consumes bytes from in and appends response bytes to out.
	// Calling it once the final reply has been sent is a programming
	// bug and panics.
	Handle(in, out *bytes.Buffer) Result

	// Address returns the requested address type, host and port. Only
	// defined once Status is HaveAddress.
	Address() (atyp byte, host string, port uint16)

	// SetAddress records the actually connected peer address, reported
	// back to the client in the success reply. A nil or non TCP address
	// falls back to the all zeros address, which is legal in SOCKS5.
	SetAddress(adr net.Addr)

	// SendReply appends the final reply with the given code to out and
	// moves the negotiator to SentReply. The bound address is included
	// for ReplySucceeded and zeroed otherwise.
	SendReply(out *bytes.Buffer, code byte)
}

// New returns a negotiator in the WaitingMethods stage.
func New() Negotiator {
	return &ngt{}
}

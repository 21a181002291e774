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

package xor

import (
	"bytes"

	stgptc "github.com/sysrqb/stegotorus/protocol"
)

// prelude sent by the client end before any payload byte.
var magic = []byte{0x9a, 0x1f, 0x5c, 0x33}

type xrk struct {
	rol stgptc.Role
	key []byte

	// keystream offsets, one per direction
	sof int
	rof int

	// count of prelude bytes already consumed on the server end
	mgc int
}

func (o *xrk) Handshake(out *bytes.Buffer) error {
	if o.rol == stgptc.RoleClient {
		_, _ = out.Write(magic)
	}

	return nil
}

func (o *xrk) Send(in, out *bytes.Buffer) error {
	if in.Len() > 0 {
		o.sof = o.code(in.Next(in.Len()), out, o.sof)
	}

	return nil
}

func (o *xrk) Recv(in, out *bytes.Buffer) (stgptc.RecvResult, error) {
	if o.rol == stgptc.RoleServer && o.mgc < len(magic) {
		for in.Len() > 0 && o.mgc < len(magic) {
			b, _ := in.ReadByte()

			if b != magic[o.mgc] {
				return stgptc.RecvBad, nil
			}

			o.mgc++
		}
	}

	if in.Len() > 0 {
		o.rof = o.code(in.Next(in.Len()), out, o.rof)
	}

	return stgptc.RecvOK, nil
}

func (o *xrk) Close() error {
	return nil
}

// code xors p with the keystream starting at offset off, appends the
// result to out and returns the next offset.
func (o *xrk) code(p []byte, out *bytes.Buffer, off int) int {
	for _, b := range p {
		_ = out.WriteByte(b ^ o.key[off%len(o.key)])
		off++
	}

	return off
}

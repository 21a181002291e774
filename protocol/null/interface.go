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

// Package null implements the passthrough obfuscation protocol: bytes
// cross the wire unchanged and no handshake prelude is emitted. It is
// mainly useful for testing the relay engine and for chaining stegotorus
// instances during development.
package null

import (
	liberr "github.com/nabbar/golib/errors"

	stgptc "github.com/sysrqb/stegotorus/protocol"
)

// Name is the registry name of this protocol.
const Name = "null"

func init() {
	stgptc.Register(Name, New)
}

// New returns a passthrough plugin instance. The role and options are
// ignored.
func New(_ stgptc.Role, _ map[string]interface{}) (stgptc.Plugin, liberr.Error) {
	return &nul{}, nil
}

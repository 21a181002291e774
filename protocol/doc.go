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

// Package protocol defines the contract between the relay engine and the
// obfuscation protocol implementations, together with a named factory
// registry used to instantiate a per-connection plugin from a listener
// configuration.
//
// A plugin transforms cleartext bytes into their over-the-wire obfuscated
// form and back. It operates exclusively on byte buffers handed in by the
// engine; it never touches a socket. The plugin is the sole producer of
// bytes on the obfuscated side of a connection and the sole consumer of
// bytes coming from it.
//
// Implementations register a factory under a protocol name, usually from
// an init function:
//
//	func init() {
//		protocol.Register("null", New)
//	}
//
// The engine then builds one plugin instance per accepted connection:
//
//	p, err := protocol.New("null", protocol.RoleClient, opts)
package protocol

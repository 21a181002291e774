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

// Package relay is the connection oriented networking engine of
// stegotorus. It owns the listening sockets, spawns one connection per
// accept, pairs the two byte stream channels of each connection through
// an obfuscation protocol plugin, runs the SOCKS5 negotiation phase when
// configured for it, and coordinates graceful versus barbaric shutdown
// of the whole engine.
//
// An Engine is an explicit context value: every listener and connection
// belongs to exactly one Engine, so several independent engines can
// coexist in one process, which the test suites rely on. There is no
// package level registry.
//
// A listener runs in one of three modes. ModeSimpleClient accepts local
// cleartext TCP and obfuscates toward a fixed remote target.
// ModeSimpleServer accepts remote obfuscated TCP and forwards cleartext
// to a fixed target. ModeSocksClient negotiates SOCKS5 on each accepted
// connection and obfuscates toward the requested, per connection target.
package relay

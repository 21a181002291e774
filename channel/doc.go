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

// Package channel provides an event-driven bidirectional byte buffer over
// one TCP socket, and the per-connection dispatcher that serializes every
// callback touching a connection's state.
//
// A Channel owns its socket and closes it exactly once. It exposes a read
// buffer fed by a background reader goroutine and a write buffer drained
// by a background writer goroutine, with three callbacks fired from
// dispatcher context: read ready (bytes arrived), write drained (the
// write buffer just became empty) and event (connected, end of stream,
// error, timeout). Each direction can be enabled or disabled
// independently; a disabled read side stops draining the kernel, which
// yields TCP backpressure toward the peer.
//
// Every exported Channel method and every callback runs inside the
// owning Dispatcher. Code outside a callback must wrap calls in
// Dispatcher.Run; code inside a callback must not, or it deadlocks.
package channel

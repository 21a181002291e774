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

package channel

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"time"

	liblog "github.com/nabbar/golib/logger"
)

// FuncRead is fired from dispatcher context when bytes arrived and the
// read side is enabled; the read buffer is non empty.
type FuncRead func()

// FuncDrain is fired from dispatcher context when the write buffer just
// became empty.
type FuncDrain func()

// FuncEvent is fired from dispatcher context on channel state changes.
// The error is nil for EventConnected and EventEOF.
type FuncEvent func(ev Event, err error)

// Dispatcher serializes all callbacks of one connection. Both channels of
// a connection share one Dispatcher, so the connection state machine runs
// strictly single threaded.
type Dispatcher struct {
	mu sync.Mutex
}

// NewDispatcher returns a new, unlocked dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Run executes f with the dispatch lock held. Calls nest nowhere: calling
// Run from inside a callback deadlocks.
func (d *Dispatcher) Run(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f()
}

// Channel is one end of a TCP connection with event driven read and
// write buffers. All methods are dispatcher context only.
type Channel interface {
	io.Closer

	// SetHandlers installs the three callbacks. Any of them may be nil.
	SetHandlers(rd FuncRead, dr FuncDrain, ev FuncEvent)

	// Connect asynchronously dials the given address. On success the
	// event handler receives EventConnected and buffered write data
	// starts flowing; on failure it receives EventError. Only valid on a
	// channel built with New.
	Connect(ctx context.Context, network, address string, rsv *net.Resolver)

	// ReadBuf returns the incoming byte buffer.
	ReadBuf() *bytes.Buffer

	// WriteBuf returns the outgoing byte buffer. After appending to it,
	// call Flush to wake the writer.
	WriteBuf() *bytes.Buffer

	// Flush wakes the writer goroutine if outgoing data is pending.
	Flush()

	// EnableRead resumes draining the kernel. If buffered bytes are
	// already pending, the read handler is invoked before returning.
	EnableRead()

	// DisableRead stops draining the kernel, causing TCP backpressure.
	DisableRead()

	// EnableWrite resumes flushing the write buffer to the socket.
	EnableWrite()

	// DisableWrite pauses flushing the write buffer.
	DisableWrite()

	// SetTimeout arms an inactivity timeout on the read side, delivered
	// as EventTimeout. Zero disables it.
	SetTimeout(t time.Duration)

	// RemoteAddr returns the peer address of the underlying socket, or
	// nil when not connected.
	RemoteAddr() net.Addr

	// IsClosed reports whether Close has run.
	IsClosed() bool
}

// New returns an unconnected channel bound to the given dispatcher. The
// socket is produced later by Connect. Write data appended before the
// connect completes is held and flushed in order once connected.
func New(d *Dispatcher, log liblog.FuncLog) Channel {
	o := &chn{
		d: d,
		l: log,
	}

	o.rCond = sync.NewCond(&d.mu)
	o.wCond = sync.NewCond(&d.mu)
	o.wrOn = true

	return o
}

// NewConn wraps an already connected socket, the server accepted case.
// The read side starts disabled, the write side enabled.
func NewConn(d *Dispatcher, cnn net.Conn, log liblog.FuncLog) Channel {
	o := &chn{
		d:   d,
		l:   log,
		cnn: cnn,
		cnd: true,
	}

	o.rCond = sync.NewCond(&d.mu)
	o.wCond = sync.NewCond(&d.mu)
	o.wrOn = true

	go o.reader()
	go o.writer()

	return o
}

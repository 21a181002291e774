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
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/golib/socket"
)

type chn struct {
	d *Dispatcher
	l liblog.FuncLog

	cnn net.Conn
	cnd bool // connected
	cls bool // closed, socket released

	rbuf bytes.Buffer
	wbuf bytes.Buffer

	rdOn bool
	wrOn bool

	rCond *sync.Cond
	wCond *sync.Cond

	tmo time.Duration

	hRead  FuncRead
	hDrain FuncDrain
	hEvent FuncEvent
}

func (o *chn) SetHandlers(rd FuncRead, dr FuncDrain, ev FuncEvent) {
	o.hRead = rd
	o.hDrain = dr
	o.hEvent = ev
}

func (o *chn) ReadBuf() *bytes.Buffer {
	return &o.rbuf
}

func (o *chn) WriteBuf() *bytes.Buffer {
	return &o.wbuf
}

func (o *chn) Flush() {
	o.wCond.Signal()
}

func (o *chn) EnableRead() {
	if o.rdOn || o.cls {
		return
	}

	o.rdOn = true
	o.rCond.Signal()

	if o.rbuf.Len() > 0 && o.hRead != nil {
		o.hRead()
	}
}

func (o *chn) DisableRead() {
	o.rdOn = false
}

func (o *chn) EnableWrite() {
	if o.wrOn || o.cls {
		return
	}

	o.wrOn = true
	o.wCond.Signal()
}

func (o *chn) DisableWrite() {
	o.wrOn = false
}

func (o *chn) SetTimeout(t time.Duration) {
	o.tmo = t
}

func (o *chn) RemoteAddr() net.Addr {
	if o.cnn == nil {
		return nil
	}

	return o.cnn.RemoteAddr()
}

func (o *chn) IsClosed() bool {
	return o.cls
}

// Close releases the socket exactly once and unblocks both background
// goroutines. Dispatcher context only.
func (o *chn) Close() error {
	if o.cls {
		return nil
	}

	o.cls = true

	var err error
	if o.cnn != nil {
		err = o.cnn.Close()
	}

	o.rCond.Broadcast()
	o.wCond.Broadcast()

	return libsck.ErrorFilter(err)
}

func (o *chn) Connect(ctx context.Context, network, address string, rsv *net.Resolver) {
	var tmo = o.tmo

	go func() {
		var dlr = net.Dialer{
			Timeout:  tmo,
			Resolver: rsv,
		}

		cnn, err := dlr.DialContext(ctx, network, address)

		o.d.Run(func() {
			if o.cls {
				if cnn != nil {
					_ = cnn.Close()
				}
				return
			}

			if err != nil {
				o.fireEvent(EventError, err)
				return
			}

			o.cnn = cnn
			o.cnd = true

			go o.reader()
			go o.writer()

			o.fireEvent(EventConnected, nil)
			o.wCond.Signal()
		})
	}()
}

// fireEvent invokes the event handler. Lock already held.
func (o *chn) fireEvent(ev Event, err error) {
	if err != nil && o.l != nil {
		if l := o.l(); l != nil {
			l.Entry(loglvl.DebugLevel, "channel event").FieldAdd("event", ev.String()).ErrorAdd(true, err).Log()
		}
	}

	if o.hEvent != nil {
		o.hEvent(ev, err)
	}
}

// reader drains the kernel into the read buffer while the read side is
// enabled, then hands control to the dispatcher.
func (o *chn) reader() {
	var tmp = make([]byte, libsck.DefaultBufferSize)

	for {
		o.d.mu.Lock()
		for !o.rdOn && !o.cls {
			o.rCond.Wait()
		}

		if o.cls {
			o.d.mu.Unlock()
			return
		}

		var (
			cnn = o.cnn
			tmo = o.tmo
		)
		o.d.mu.Unlock()

		if tmo > 0 {
			_ = cnn.SetReadDeadline(time.Now().Add(tmo))
		} else {
			_ = cnn.SetReadDeadline(time.Time{})
		}

		n, err := cnn.Read(tmp)

		o.d.mu.Lock()

		if o.cls {
			o.d.mu.Unlock()
			return
		}

		if n > 0 {
			o.rbuf.Write(tmp[:n])

			if o.rdOn && o.hRead != nil {
				o.hRead()
			}
		}

		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				o.fireEvent(EventEOF, nil)
			case errors.Is(err, os.ErrDeadlineExceeded):
				o.fireEvent(EventTimeout, err)
			default:
				o.fireEvent(EventError, err)
			}

			o.d.mu.Unlock()
			return
		}

		o.d.mu.Unlock()
	}
}

// writer flushes the write buffer to the socket while the write side is
// enabled and the channel is connected. It reports the drained condition
// each time the buffer transitions to empty.
func (o *chn) writer() {
	for {
		o.d.mu.Lock()
		for !o.cls && (!o.cnd || !o.wrOn || o.wbuf.Len() == 0) {
			o.wCond.Wait()
		}

		if o.cls {
			o.d.mu.Unlock()
			return
		}

		var n = o.wbuf.Len()
		if n > libsck.DefaultBufferSize {
			n = libsck.DefaultBufferSize
		}

		var (
			cnn = o.cnn
			chk = append(make([]byte, 0, n), o.wbuf.Next(n)...)
		)
		o.d.mu.Unlock()

		_, err := cnn.Write(chk)

		o.d.mu.Lock()

		if o.cls {
			o.d.mu.Unlock()
			return
		}

		if err != nil {
			o.fireEvent(EventError, err)
			o.d.mu.Unlock()
			return
		}

		if o.wbuf.Len() == 0 && o.hDrain != nil {
			o.hDrain()
		}

		o.d.mu.Unlock()
	}
}

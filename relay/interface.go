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

import (
	"context"
	"net"
	"sync"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
)

// FuncFinish is called exactly once, when the engine is shutting down
// and the last live connection has been destroyed.
type FuncFinish func()

// Listener is one bound accepting socket producing connections in a
// single mode.
type Listener interface {
	// GetName returns the configured listener name.
	GetName() string

	// GetBindable returns the local bind address.
	GetBindable() string

	// Mode returns the listener mode.
	Mode() Mode

	// Start launches the accept loop. The socket is already bound.
	Start(ctx context.Context) error

	// Stop closes the accept socket and terminates the accept loop.
	// Live connections are left alone.
	Stop(ctx context.Context) error

	// IsRunning reports whether the accept loop is active.
	IsRunning() bool
}

// Engine owns the listener set, the live connection set and the
// shutdown coordination. Several independent engines can coexist.
type Engine interface {
	// NewListener binds a listening socket for the given config and
	// registers it. The config is validated first. The returned
	// listener is not started.
	NewListener(cfg Config) (Listener, liberr.Error)

	// StartShutdown flips the engine into shutting down state. New
	// connections are refused from that point on. With barbaric, every
	// live connection is force closed, dropping buffered data;
	// otherwise live connections drain naturally. Either way the finish
	// hook runs once the connection set is empty. Graceful calls are
	// idempotent.
	StartShutdown(barbaric bool)

	// FreeAllListeners stops and destroys every listener, closing the
	// accept sockets. Idempotent.
	FreeAllListeners()

	// IsShuttingDown reports whether StartShutdown has run. It never
	// reverts to false.
	IsShuttingDown() bool

	// OpenConnections returns the live connection count.
	OpenConnections() int64

	// Listeners returns the active listener count.
	Listeners() int
}

// New returns an engine bound to the given context. Every outbound dial
// runs under that context, so cancelling it aborts dials in flight.
// Shutdown does not cancel it. The finish hook and logger may be nil.
func New(ctx context.Context, finish FuncFinish, defLog liblog.FuncLog) Engine {
	if ctx == nil {
		ctx = context.Background()
	}

	if defLog == nil {
		l := liblog.New(ctx)
		defLog = func() liblog.Logger {
			return l
		}
	}

	e := &eng{
		x:   ctx,
		l:   make(map[*lstn]struct{}),
		c:   make(map[*cnx]struct{}),
		s:   libatm.NewValue[bool](),
		f:   finish,
		o:   sync.Once{},
		log: defLog,
		rsv: net.DefaultResolver,
	}

	e.s.Store(false)

	return e
}

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
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
)

type eng struct {
	x context.Context

	m sync.Mutex
	l map[*lstn]struct{}
	c map[*cnx]struct{}

	s libatm.Value[bool]
	f FuncFinish
	o sync.Once

	log liblog.FuncLog
	rsv *net.Resolver
}

func (e *eng) logger() liblog.Logger {
	if e.log != nil {
		if l := e.log(); l != nil {
			return l
		}
	}

	return liblog.New(e.x)
}

func (e *eng) NewListener(cfg Config) (Listener, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if e.IsShuttingDown() {
		return nil, ErrorShuttingDown.Error(nil)
	}

	lis, err := net.Listen(libptc.NetworkTCP.Code(), cfg.Bind)
	if err != nil {
		return nil, ErrorListenerBind.ErrorParent(err)
	}

	l := newListener(e, cfg, lis)

	e.m.Lock()
	e.l[l] = struct{}{}
	e.m.Unlock()

	e.logger().Entry(loglvl.InfoLevel, "listener bound").FieldAdd("name", l.GetName()).FieldAdd("mode", l.Mode().String()).FieldAdd("bind", l.GetBindable()).Log()

	return l, nil
}

func (e *eng) StartShutdown(barbaric bool) {
	e.s.Store(true)

	if barbaric {
		e.m.Lock()
		var all = make([]*cnx, 0, len(e.c))
		for c := range e.c {
			all = append(all, c)
		}
		e.m.Unlock()

		for _, c := range all {
			c.forceClose()
		}
	}

	e.finishCheck()
}

func (e *eng) FreeAllListeners() {
	e.m.Lock()
	var all = make([]*lstn, 0, len(e.l))
	for l := range e.l {
		all = append(all, l)
	}
	e.l = make(map[*lstn]struct{})
	e.m.Unlock()

	for _, l := range all {
		_ = l.Stop(e.x)
	}
}

func (e *eng) IsShuttingDown() bool {
	return e.s.Load()
}

func (e *eng) OpenConnections() int64 {
	e.m.Lock()
	defer e.m.Unlock()

	return int64(len(e.c))
}

func (e *eng) Listeners() int {
	e.m.Lock()
	defer e.m.Unlock()

	return len(e.l)
}

// addConn admits a new connection unless the engine is shutting down.
func (e *eng) addConn(c *cnx) bool {
	if e.IsShuttingDown() {
		return false
	}

	e.m.Lock()
	defer e.m.Unlock()

	e.c[c] = struct{}{}
	return true
}

// delConn removes a connection from the registry. Removal is a
// prerequisite of destruction: the connection close path always calls
// it before releasing resources.
func (e *eng) delConn(c *cnx) {
	e.m.Lock()
	delete(e.c, c)
	e.m.Unlock()

	e.finishCheck()
}

// finishCheck hands off to the finish hook once shutting down with no
// live connection left. The hook runs at most once.
func (e *eng) finishCheck() {
	if !e.IsShuttingDown() {
		return
	}

	e.m.Lock()
	var empty = len(e.c) == 0
	e.m.Unlock()

	if !empty {
		return
	}

	e.o.Do(func() {
		e.logger().Entry(loglvl.InfoLevel, "shutdown complete").Log()

		if e.f != nil {
			e.f()
		}
	})
}

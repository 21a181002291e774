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

	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	librun "github.com/nabbar/golib/runner/startStop"
	libsck "github.com/nabbar/golib/socket"
)

type lstn struct {
	e   *eng
	cfg Config
	lis libatm.Value[net.Listener]
	run librun.StartStop
}

func newListener(e *eng, cfg Config, lis net.Listener) *lstn {
	l := &lstn{
		e:   e,
		cfg: cfg,
		lis: libatm.NewValue[net.Listener](),
	}

	l.lis.Store(lis)
	l.run = librun.New(l.acceptLoop, l.closeSocket)

	return l
}

func (l *lstn) logger() liblog.Logger {
	return l.e.logger()
}

func (l *lstn) GetName() string {
	return l.cfg.GetName()
}

func (l *lstn) GetBindable() string {
	if lis := l.lis.Load(); lis != nil {
		return lis.Addr().String()
	}

	return l.cfg.Bind
}

func (l *lstn) Mode() Mode {
	return l.cfg.Mode
}

func (l *lstn) Start(ctx context.Context) error {
	return l.run.Start(ctx)
}

func (l *lstn) Stop(ctx context.Context) error {
	return l.run.Stop(ctx)
}

func (l *lstn) IsRunning() bool {
	return l.run.IsRunning()
}

// closeSocket releases the accept socket; after that the accept loop
// unblocks with an error and returns, and no new connection can be
// admitted through this listener.
func (l *lstn) closeSocket(_ context.Context) error {
	if lis := l.lis.Swap(nil); lis != nil {
		return libsck.ErrorFilter(lis.Close())
	}

	return nil
}

// acceptLoop runs until the accept socket is closed. Each accepted
// connection gets its own dispatcher and state machine.
func (l *lstn) acceptLoop(ctx context.Context) error {
	lis := l.lis.Load()
	if lis == nil {
		return ErrorParamEmpty.Error(nil)
	}

	for {
		cnn, err := lis.Accept()

		if err != nil {
			if libsck.ErrorFilter(err) == nil {
				// socket released by Stop or FreeAllListeners
				return nil
			}

			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}

			l.logger().Entry(loglvl.ErrorLevel, "accept failed").FieldAdd("listener", l.GetName()).ErrorAdd(true, err).Log()
			return err
		}

		if l.e.IsShuttingDown() {
			_ = cnn.Close()
			continue
		}

		go newConnection(l, cnn)
	}
}

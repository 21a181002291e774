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
	"net"
	"strconv"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"

	stgchn "github.com/sysrqb/stegotorus/channel"
	stgptc "github.com/sysrqb/stegotorus/protocol"
	stgsck "github.com/sysrqb/stegotorus/socks"
)

// cnx pairs the upstream facing input channel with the downstream
// facing output channel through one protocol plugin instance. Every
// method below runs in dispatcher context; newConnection and forceClose
// are the only entry points from outside the loop.
type cnx struct {
	e   *eng
	nam string
	mod Mode
	dsp *stgchn.Dispatcher

	plg stgptc.Plugin
	ngt stgsck.Negotiator

	in  stgchn.Channel
	out stgchn.Channel

	stp Step
	tgt string
	ptc string
	opt map[string]interface{}
	tmo time.Duration
	log liblog.FuncLog
}

// newConnection admits one accepted socket into the engine and boots
// its state machine. Refused sockets (engine shutting down) are closed
// on the spot.
func newConnection(l *lstn, nc net.Conn) {
	c := &cnx{
		e:   l.e,
		nam: l.GetName(),
		mod: l.cfg.Mode,
		dsp: stgchn.NewDispatcher(),
		tgt: l.cfg.Target,
		ptc: l.cfg.Protocol,
		opt: l.cfg.Options,
		tmo: l.cfg.IdleTimeout.Time(),
		log: l.e.log,
	}

	if !l.e.addConn(c) {
		_ = nc.Close()
		return
	}

	c.dsp.Run(func() {
		c.start(nc)
	})
}

// forceClose drops the connection with its buffered data, the barbaric
// shutdown path. Safe to call from outside the dispatcher.
func (c *cnx) forceClose() {
	c.dsp.Run(c.closeNow)
}

func (c *cnx) logger() liblog.Logger {
	return c.e.logger()
}

func (c *cnx) role() stgptc.Role {
	if c.mod == ModeSimpleServer {
		return stgptc.RoleServer
	}

	return stgptc.RoleClient
}

// sides returns the cleartext facing and the obfuscated facing channel
// of the pair. In the simple server mode the accepted socket carries
// the obfuscated stream and the dialed one the cleartext.
func (c *cnx) sides() (pln, obf stgchn.Channel) {
	if c.mod == ModeSimpleServer {
		return c.out, c.in
	}

	return c.in, c.out
}

func (c *cnx) peerOf(self stgchn.Channel) stgchn.Channel {
	if self == c.in {
		return c.out
	}

	return c.in
}

func (c *cnx) eventsOf(self stgchn.Channel) stgchn.FuncEvent {
	return func(ev stgchn.Event, err error) {
		c.onChanEvent(self, ev, err)
	}
}

func (c *cnx) start(nc net.Conn) {
	c.in = stgchn.NewConn(c.dsp, nc, c.log)
	c.in.SetTimeout(c.tmo)

	plg, err := stgptc.New(c.ptc, c.role(), c.opt)
	if err != nil {
		c.logger().Entry(loglvl.ErrorLevel, "cannot create protocol plugin").FieldAdd("listener", c.nam).ErrorAdd(true, err).Log()
		c.closeNow()
		return
	}

	c.plg = plg

	if c.mod == ModeSocksClient {
		c.stp = StepNegotiating
		c.ngt = stgsck.New()
		c.in.SetHandlers(c.socksRead, nil, c.eventsOf(c.in))
		c.in.EnableRead()
		return
	}

	c.stp = StepConnecting
	c.out = stgchn.New(c.dsp, c.log)
	c.out.SetTimeout(c.tmo)
	c.in.SetHandlers(nil, nil, c.eventsOf(c.in))
	c.out.SetHandlers(nil, nil, c.eventsOf(c.out))

	_, obf := c.sides()

	if e := c.plg.Handshake(obf.WriteBuf()); e != nil {
		c.logger().Entry(loglvl.ErrorLevel, "protocol handshake failed").FieldAdd("listener", c.nam).ErrorAdd(true, e).Log()
		c.closeNow()
		return
	}

	obf.Flush()
	c.out.Connect(c.e.x, libptc.NetworkTCP.Code(), c.tgt, c.e.rsv)
}

// socksRead drives the negotiator from the input read buffer until it
// holds a target address or fails. A greeting and a request arriving in
// one segment are both consumed in one turn.
func (c *cnx) socksRead() {
	for {
		res := c.ngt.Handle(c.in.ReadBuf(), c.in.WriteBuf())
		c.in.Flush()

		switch res {
		case stgsck.ResultIncomplete:
			return

		case stgsck.ResultBroken:
			// garbage on the wire gets no reply; a method reject left
			// 05 FF in the write buffer, which drains before the close
			if c.in.WriteBuf().Len() > 0 {
				c.flushAndClose(nil, c.in)
			} else {
				c.closeNow()
			}
			return

		case stgsck.ResultCmdNotConnect:
			c.ngt.SendReply(c.in.WriteBuf(), stgsck.ReplyCmdNotSupported)
			c.ngt = nil
			c.flushAndClose(nil, c.in)
			return

		case stgsck.ResultGood:
			if c.ngt.Status() == stgsck.HaveAddress {
				c.beginConnect()
				return
			}

			if c.in.ReadBuf().Len() == 0 {
				return
			}
		}
	}
}

// beginConnect leaves negotiation: the output channel is created lazily
// here, the handshake prelude lands in its write buffer ahead of any
// payload, and the dial resolves the SOCKS hostname through the engine
// resolver.
func (c *cnx) beginConnect() {
	c.stp = StepConnecting
	c.in.DisableRead()

	_, hst, prt := c.ngt.Address()

	c.out = stgchn.New(c.dsp, c.log)
	c.out.SetTimeout(c.tmo)
	c.out.SetHandlers(c.pumpRecv, nil, c.eventsOf(c.out))

	if e := c.plg.Handshake(c.out.WriteBuf()); e != nil {
		c.logger().Entry(loglvl.ErrorLevel, "protocol handshake failed").FieldAdd("listener", c.nam).ErrorAdd(true, e).Log()
		c.closeNow()
		return
	}

	c.out.Connect(c.e.x, libptc.NetworkTCP.Code(), net.JoinHostPort(hst, strconv.Itoa(int(prt))), c.e.rsv)
}

func (c *cnx) onChanEvent(self stgchn.Channel, ev stgchn.Event, err error) {
	if c.stp == StepClosed {
		return
	}

	if ev == stgchn.EventConnected {
		if self != c.out {
			panic("relay: connected event on the input channel")
		}

		if c.stp == StepFlushing {
			// drain resumes now that the socket exists
			return
		}

		if c.stp != StepConnecting {
			panic("relay: connected event in step " + c.stp.String())
		}

		c.onConnected()
		return
	}

	c.onBroken(self, err)
}

// onConnected moves the pair to open: SOCKS gets its success reply with
// the actually bound peer address, both read sides come alive, and any
// payload the client pipelined behind its CONNECT request is pumped in
// the same turn so it is never stranded.
func (c *cnx) onConnected() {
	c.stp = StepOpen

	if c.ngt != nil {
		c.ngt.SetAddress(c.out.RemoteAddr())
		c.ngt.SendReply(c.in.WriteBuf(), stgsck.ReplySucceeded)
		c.ngt = nil
		c.in.Flush()
	}

	pln, obf := c.sides()

	pln.SetHandlers(c.pumpSend, nil, c.eventsOf(pln))
	obf.SetHandlers(c.pumpRecv, nil, c.eventsOf(obf))

	pln.EnableRead()
	obf.EnableRead()
}

// onBroken handles EOF, error and timeout alike: flush the peer when it
// still holds outbound bytes, close right away otherwise.
func (c *cnx) onBroken(self stgchn.Channel, err error) {
	if c.stp == StepFlushing {
		c.closeNow()
		return
	}

	// dial failure with the SOCKS reply still owed
	if c.ngt != nil && self == c.out && c.stp == StepConnecting {
		c.ngt.SendReply(c.in.WriteBuf(), stgsck.ReplyCode(err))
		c.ngt = nil
		c.flushAndClose(c.out, c.in)
		return
	}

	peer := c.peerOf(self)

	if peer == nil || peer.WriteBuf().Len() == 0 {
		c.closeNow()
		return
	}

	c.flushAndClose(self, peer)
}

// flushAndClose enters the half close drain: the broken side goes
// silent in both directions, the surviving side stops reading so no new
// payload enters, and its write drained callback tears the connection
// down once the buffer hits zero.
func (c *cnx) flushAndClose(broken, surviving stgchn.Channel) {
	c.stp = StepFlushing

	if broken != nil {
		broken.DisableRead()
		broken.DisableWrite()
	}

	surviving.DisableRead()
	surviving.SetHandlers(nil, c.closeNow, c.eventsOf(surviving))
	surviving.EnableWrite()
	surviving.Flush()

	if surviving.WriteBuf().Len() == 0 {
		c.closeNow()
	}
}

// pumpSend moves cleartext through the plugin onto the obfuscated wire.
func (c *cnx) pumpSend() {
	pln, obf := c.sides()

	if e := c.plg.Send(pln.ReadBuf(), obf.WriteBuf()); e != nil {
		c.logger().Entry(loglvl.ErrorLevel, "protocol send failed").FieldAdd("listener", c.nam).ErrorAdd(true, e).Log()
		c.closeNow()
		return
	}

	obf.Flush()
}

// pumpRecv recovers cleartext from the obfuscated wire. A SendPending
// result obliges an immediate reverse Send in the same turn.
func (c *cnx) pumpRecv() {
	pln, obf := c.sides()

	res, e := c.plg.Recv(obf.ReadBuf(), pln.WriteBuf())
	pln.Flush()

	if e != nil || res == stgptc.RecvBad {
		if e != nil {
			c.logger().Entry(loglvl.ErrorLevel, "protocol recv failed").FieldAdd("listener", c.nam).ErrorAdd(true, e).Log()
		}

		c.closeNow()
		return
	}

	if res == stgptc.RecvSendPending {
		c.pumpSend()
	}
}

// closeNow is the terminal transition, run exactly once: the registry
// entry goes first, then sockets and plugin are released.
func (c *cnx) closeNow() {
	if c.stp == StepClosed {
		return
	}

	c.stp = StepClosed
	c.ngt = nil

	c.e.delConn(c)

	if c.in != nil {
		_ = c.in.Close()
	}

	if c.out != nil {
		_ = c.out.Close()
	}

	if c.plg != nil {
		_ = c.plg.Close()
	}
}

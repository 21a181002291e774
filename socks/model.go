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

package socks

import (
	"bytes"
	"encoding/binary"
	"net"
)

const (
	socksVersion   byte = 0x05
	methodNoAuth   byte = 0x00
	methodNoAccept byte = 0xFF
	cmdConnect     byte = 0x01
)

type ngt struct {
	sta Status

	// requested target
	typ byte
	hst string
	prt uint16

	// actually bound peer address for the success reply
	bip net.IP
	bpt uint16
}

func (o *ngt) Status() Status {
	return o.sta
}

func (o *ngt) Address() (byte, string, uint16) {
	return o.typ, o.hst, o.prt
}

func (o *ngt) SetAddress(adr net.Addr) {
	if tcp, ok := adr.(*net.TCPAddr); ok && tcp != nil {
		o.bip = tcp.IP
		o.bpt = uint16(tcp.Port)
	}
}

func (o *ngt) Handle(in, out *bytes.Buffer) Result {
	switch o.sta {
	case WaitingMethods:
		return o.handleMethods(in, out)
	case WaitingRequest:
		return o.handleRequest(in)
	case HaveAddress:
		// pipelined payload stays in the buffer untouched
		return ResultGood
	}

	panic("socks: negotiator re-entered after final reply")
}

func (o *ngt) handleMethods(in, out *bytes.Buffer) Result {
	var pk = in.Bytes()

	if len(pk) < 2 {
		return ResultIncomplete
	}

	if pk[0] != socksVersion {
		return ResultBroken
	}

	var n = int(pk[1])

	if len(pk) < 2+n {
		return ResultIncomplete
	}

	var found = false
	for _, m := range pk[2 : 2+n] {
		if m == methodNoAuth {
			found = true
			break
		}
	}

	in.Next(2 + n)

	if !found {
		out.Write([]byte{socksVersion, methodNoAccept})
		return ResultBroken
	}

	out.Write([]byte{socksVersion, methodNoAuth})
	o.sta = WaitingRequest

	return ResultGood
}

func (o *ngt) handleRequest(in *bytes.Buffer) Result {
	var pk = in.Bytes()

	if len(pk) < 4 {
		return ResultIncomplete
	}

	if pk[0] != socksVersion || pk[2] != 0x00 {
		return ResultBroken
	}

	var (
		cmd = pk[1]
		typ = pk[3]
		aln int
		off = 4
	)

	switch typ {
	case AddrIPv4:
		aln = net.IPv4len
	case AddrIPv6:
		aln = net.IPv6len
	case AddrDomain:
		if len(pk) < 5 {
			return ResultIncomplete
		}
		aln = int(pk[4])
		off = 5
	default:
		return ResultBroken
	}

	if len(pk) < off+aln+2 {
		return ResultIncomplete
	}

	switch typ {
	case AddrDomain:
		o.hst = string(pk[off : off+aln])
	default:
		o.hst = net.IP(pk[off : off+aln]).String()
	}

	o.typ = typ
	o.prt = binary.BigEndian.Uint16(pk[off+aln : off+aln+2])

	in.Next(off + aln + 2)

	if cmd != cmdConnect {
		return ResultCmdNotConnect
	}

	o.sta = HaveAddress
	return ResultGood
}

func (o *ngt) SendReply(out *bytes.Buffer, code byte) {
	var (
		ip  = net.IPv4zero.To4()
		prt uint16
	)

	if code == ReplySucceeded && o.bip != nil {
		if v4 := o.bip.To4(); v4 != nil {
			ip = v4
		} else {
			ip = o.bip.To16()
		}
		prt = o.bpt
	}

	var typ = AddrIPv4
	if len(ip) == net.IPv6len {
		typ = AddrIPv6
	}

	out.Write([]byte{socksVersion, code, 0x00, typ})
	out.Write(ip)

	var p [2]byte
	binary.BigEndian.PutUint16(p[:], prt)
	out.Write(p[:])

	o.sta = SentReply
}

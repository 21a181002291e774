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

// negotiation_test.go drives the negotiator state machine over raw wire
// bytes: greeting, CONNECT parsing for each address type, command and
// version rejection, fragmented input, and reply emission.
package socks_test

import (
	"bytes"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	stgsck "github.com/sysrqb/stegotorus/socks"
)

func feed(n stgsck.Negotiator, in *bytes.Buffer, out *bytes.Buffer, b ...byte) stgsck.Result {
	in.Write(b)
	return n.Handle(in, out)
}

var _ = Describe("SOCKS Negotiation", func() {
	var (
		ngt stgsck.Negotiator
		in  *bytes.Buffer
		out *bytes.Buffer
	)

	BeforeEach(func() {
		ngt = stgsck.New()
		in = &bytes.Buffer{}
		out = &bytes.Buffer{}
	})

	Context("method selection", func() {
		It("should accept the no-auth method and reply 05 00", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x00)

			Expect(res).To(Equal(stgsck.ResultGood))
			Expect(out.Bytes()).To(Equal([]byte{0x05, 0x00}))
			Expect(ngt.Status()).To(Equal(stgsck.WaitingRequest))
		})

		It("should pick no-auth out of several offered methods", func() {
			res := feed(ngt, in, out, 0x05, 0x03, 0x02, 0x00, 0x01)

			Expect(res).To(Equal(stgsck.ResultGood))
			Expect(out.Bytes()).To(Equal([]byte{0x05, 0x00}))
		})

		It("should reply 05 FF and break when no-auth is not offered", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x02)

			Expect(res).To(Equal(stgsck.ResultBroken))
			Expect(out.Bytes()).To(Equal([]byte{0x05, 0xFF}))
		})

		It("should break on a wrong version byte", func() {
			res := feed(ngt, in, out, 0x04, 0x01, 0x00)

			Expect(res).To(Equal(stgsck.ResultBroken))
		})

		It("should wait for the full method list", func() {
			res := feed(ngt, in, out, 0x05, 0x02, 0x00)

			Expect(res).To(Equal(stgsck.ResultIncomplete))
			Expect(ngt.Status()).To(Equal(stgsck.WaitingMethods))

			res = feed(ngt, in, out, 0x01)
			Expect(res).To(Equal(stgsck.ResultGood))
		})
	})

	Context("CONNECT request", func() {
		BeforeEach(func() {
			Expect(feed(ngt, in, out, 0x05, 0x01, 0x00)).To(Equal(stgsck.ResultGood))
			out.Reset()
		})

		It("should parse an IPv4 target", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x00, 0x01, 0x7F, 0x00, 0x00, 0x01, 0x00, 0x50)

			Expect(res).To(Equal(stgsck.ResultGood))
			Expect(ngt.Status()).To(Equal(stgsck.HaveAddress))

			typ, hst, prt := ngt.Address()
			Expect(typ).To(Equal(stgsck.AddrIPv4))
			Expect(hst).To(Equal("127.0.0.1"))
			Expect(prt).To(Equal(uint16(80)))
		})

		It("should parse a domain target", func() {
			res := feed(ngt, in, out,
				0x05, 0x01, 0x00, 0x03, 0x0B,
				'e', 'x', 'a', 'm', 'p', 'l', 'e', '.', 'c', 'o', 'm',
				0x01, 0xBB)

			Expect(res).To(Equal(stgsck.ResultGood))

			typ, hst, prt := ngt.Address()
			Expect(typ).To(Equal(stgsck.AddrDomain))
			Expect(hst).To(Equal("example.com"))
			Expect(prt).To(Equal(uint16(443)))
		})

		It("should parse an IPv6 target", func() {
			req := append([]byte{0x05, 0x01, 0x00, 0x04}, net.ParseIP("::1").To16()...)
			req = append(req, 0x1F, 0x90)

			res := feed(ngt, in, out, req...)

			Expect(res).To(Equal(stgsck.ResultGood))

			typ, hst, prt := ngt.Address()
			Expect(typ).To(Equal(stgsck.AddrIPv6))
			Expect(hst).To(Equal("::1"))
			Expect(prt).To(Equal(uint16(8080)))
		})

		It("should report BIND as command not connect", func() {
			res := feed(ngt, in, out, 0x05, 0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

			Expect(res).To(Equal(stgsck.ResultCmdNotConnect))
		})

		It("should report UDP ASSOCIATE as command not connect", func() {
			res := feed(ngt, in, out, 0x05, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

			Expect(res).To(Equal(stgsck.ResultCmdNotConnect))
		})

		It("should break on an unknown address type", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x00, 0x05, 0x00, 0x00)

			Expect(res).To(Equal(stgsck.ResultBroken))
		})

		It("should break on a non zero reserved byte", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x01, 0x01, 0x7F, 0x00, 0x00, 0x01, 0x00, 0x50)

			Expect(res).To(Equal(stgsck.ResultBroken))
		})

		It("should wait for a fragmented request", func() {
			res := feed(ngt, in, out, 0x05, 0x01, 0x00, 0x01, 0x7F, 0x00)
			Expect(res).To(Equal(stgsck.ResultIncomplete))

			res = feed(ngt, in, out, 0x00, 0x01, 0x00, 0x50)
			Expect(res).To(Equal(stgsck.ResultGood))
			Expect(ngt.Status()).To(Equal(stgsck.HaveAddress))
		})

		It("should leave pipelined payload untouched in the input buffer", func() {
			req := []byte{0x05, 0x01, 0x00, 0x01, 0x7F, 0x00, 0x00, 0x01, 0x00, 0x50}
			req = append(req, []byte("GET / HTTP/1.0\r\n\r\n")...)

			res := feed(ngt, in, out, req...)

			Expect(res).To(Equal(stgsck.ResultGood))
			Expect(in.String()).To(Equal("GET / HTTP/1.0\r\n\r\n"))
		})
	})

	Context("reply emission", func() {
		BeforeEach(func() {
			Expect(feed(ngt, in, out, 0x05, 0x01, 0x00)).To(Equal(stgsck.ResultGood))
			Expect(feed(ngt, in, out, 0x05, 0x01, 0x00, 0x01, 0x7F, 0x00, 0x00, 0x01, 0x00, 0x50)).To(Equal(stgsck.ResultGood))
			out.Reset()
		})

		It("should report the bound peer address on success", func() {
			ngt.SetAddress(&net.TCPAddr{IP: net.IPv4(10, 1, 2, 3), Port: 4242})
			ngt.SendReply(out, stgsck.ReplySucceeded)

			Expect(out.Bytes()).To(Equal([]byte{0x05, 0x00, 0x00, 0x01, 0x0A, 0x01, 0x02, 0x03, 0x10, 0x92}))
			Expect(ngt.Status()).To(Equal(stgsck.SentReply))
		})

		It("should fall back to the all zeros address when none was set", func() {
			ngt.SendReply(out, stgsck.ReplySucceeded)

			Expect(out.Bytes()).To(Equal([]byte{0x05, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}))
		})

		It("should zero the address on a negative reply", func() {
			ngt.SetAddress(&net.TCPAddr{IP: net.IPv4(10, 1, 2, 3), Port: 4242})
			ngt.SendReply(out, stgsck.ReplyConnectionRefused)

			Expect(out.Bytes()).To(Equal([]byte{0x05, 0x05, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}))
		})

		It("should panic when handled again after the reply", func() {
			ngt.SendReply(out, stgsck.ReplySucceeded)

			Expect(func() {
				_ = ngt.Handle(in, out)
			}).To(Panic())
		})
	})
})

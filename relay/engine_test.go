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

// engine_test.go runs the end to end scenarios: simple passthrough,
// SOCKS negotiation against live targets, pipelining, half close flush,
// idle timeout, and both shutdown disciplines.
package relay_test

import (
	"io"
	"net"
	"sync/atomic"
	"time"

	libdur "github.com/nabbar/golib/duration"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sysrqb/stegotorus/protocol/null"
	"github.com/sysrqb/stegotorus/protocol/xor"
	stgrly "github.com/sysrqb/stegotorus/relay"
)

var _ = Describe("Relay Engine", func() {
	var (
		eng stgrly.Engine
		fin atomic.Int32
	)

	BeforeEach(func() {
		fin.Store(0)
		eng = stgrly.New(globalCtx, func() {
			fin.Add(1)
		}, nil)
	})

	AfterEach(func() {
		eng.StartShutdown(true)
		eng.FreeAllListeners()
	})

	Context("simple client mode", func() {
		It("should tunnel a passthrough stream to the fixed target", func() {
			tgt := echoServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			cli, err := net.Dial("tcp", l.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			_, err = cli.Write([]byte("hello\n"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 6)
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf)).To(Equal("hello\n"))

			Expect(eng.OpenConnections()).To(Equal(int64(1)))

			_ = cli.Close()
			Eventually(eng.OpenConnections, time.Second).Should(Equal(int64(0)))
		})

		It("should deliver every buffered byte before the end of stream", func() {
			payload := make([]byte, 100)
			for i := range payload {
				payload[i] = byte(i)
			}

			tgt := burstServer(payload)
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			cli, err := net.Dial("tcp", l.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			got, err := io.ReadAll(cli)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(payload))

			Eventually(eng.OpenConnections, time.Second).Should(Equal(int64(0)))
		})

		It("should drop the connection after the idle timeout", func() {
			tgt := sinkServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:        stgrly.ModeSimpleClient,
				Target:      tgt.Addr(),
				Protocol:    null.Name,
				IdleTimeout: libdur.Duration(100 * time.Millisecond),
			})

			cli, err := net.Dial("tcp", l.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			Eventually(eng.OpenConnections, 2*time.Second).Should(Equal(int64(0)))
		})
	})

	Context("obfuscated chain", func() {
		It("should round trip through a client and server pair", func() {
			tgt := echoServer()
			defer tgt.Stop()

			opt := map[string]interface{}{"key": "sekrit"}

			srv := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleServer,
				Target:   tgt.Addr(),
				Protocol: xor.Name,
				Options:  opt,
			})

			cln := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   srv.GetBindable(),
				Protocol: xor.Name,
				Options:  opt,
			})

			cli, err := net.Dial("tcp", cln.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			_, err = cli.Write([]byte("covert payload"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, len("covert payload"))
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf)).To(Equal("covert payload"))
		})
	})

	Context("socks client mode", func() {
		var lsn stgrly.Listener

		BeforeEach(func() {
			lsn = startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSocksClient,
				Protocol: null.Name,
			})
		})

		It("should connect to the requested target and report its address", func() {
			tgt := echoServer()
			defer tgt.Stop()

			cli, err := net.Dial("tcp", lsn.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			socksHandshake(cli)
			rep := socksConnect(cli, tgt.Addr())

			Expect(rep[0]).To(Equal(byte(0x05)))
			Expect(rep[1]).To(Equal(byte(0x00)))
			Expect(rep[3]).To(Equal(byte(0x01)))

			adr, err := net.ResolveTCPAddr("tcp", tgt.Addr())
			Expect(err).ToNot(HaveOccurred())
			Expect(net.IP(rep[4:8]).String()).To(Equal(adr.IP.String()))

			_, err = cli.Write([]byte("tunnel me"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, len("tunnel me"))
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf)).To(Equal("tunnel me"))
		})

		It("should refuse BIND with command not supported and close", func() {
			cli, err := net.Dial("tcp", lsn.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			socksHandshake(cli)

			_, err = cli.Write([]byte{0x05, 0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
			Expect(err).ToNot(HaveOccurred())

			rep := make([]byte, 10)
			_, err = io.ReadFull(cli, rep)
			Expect(err).ToNot(HaveOccurred())
			Expect(rep).To(Equal([]byte{0x05, 0x07, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}))

			one := make([]byte, 1)
			_, err = cli.Read(one)
			Expect(err).To(Equal(io.EOF))

			Eventually(eng.OpenConnections, time.Second).Should(Equal(int64(0)))
		})

		It("should close without a reply on a garbage greeting", func() {
			cli, err := net.Dial("tcp", lsn.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			_, err = cli.Write([]byte{0x42, 0x42, 0x42})
			Expect(err).ToNot(HaveOccurred())

			got, err := io.ReadAll(cli)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(BeEmpty())
		})

		It("should map a refused dial onto the SOCKS reply", func() {
			gone, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())

			target := gone.Addr().String()
			Expect(gone.Close()).To(Succeed())

			cli, err := net.Dial("tcp", lsn.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			socksHandshake(cli)
			rep := socksConnect(cli, target)

			Expect(rep[1]).To(Equal(byte(0x05)))

			one := make([]byte, 1)
			_, err = cli.Read(one)
			Expect(err).To(Equal(io.EOF))
		})

		It("should forward payload pipelined behind the CONNECT request", func() {
			tgt := sinkServer()
			defer tgt.Stop()

			cli, err := net.Dial("tcp", lsn.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			socksHandshake(cli)

			adr, err := net.ResolveTCPAddr("tcp", tgt.Addr())
			Expect(err).ToNot(HaveOccurred())

			req := append([]byte{0x05, 0x01, 0x00, 0x01}, adr.IP.To4()...)
			req = append(req, byte(adr.Port>>8), byte(adr.Port))
			req = append(req, []byte("GET / HTTP/1.0\r\n\r\n")...)

			_, err = cli.Write(req)
			Expect(err).ToNot(HaveOccurred())

			rep := make([]byte, 10)
			_, err = io.ReadFull(cli, rep)
			Expect(err).ToNot(HaveOccurred())
			Expect(rep[1]).To(Equal(byte(0x00)))

			Eventually(func() string {
				return string(tgt.Received())
			}, time.Second).Should(Equal("GET / HTTP/1.0\r\n\r\n"))
		})
	})

	Context("shutdown", func() {
		It("should refuse new connections once shutting down", func() {
			tgt := echoServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			eng.StartShutdown(false)
			Expect(eng.IsShuttingDown()).To(BeTrue())

			cli, err := net.Dial("tcp", l.GetBindable())
			Expect(err).ToNot(HaveOccurred())
			defer func() {
				_ = cli.Close()
			}()

			got, err := io.ReadAll(cli)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(BeEmpty())
			Expect(eng.OpenConnections()).To(Equal(int64(0)))
		})

		It("should run the finish hook once, on the empty connection set", func() {
			eng.StartShutdown(false)
			eng.StartShutdown(false)

			Eventually(fin.Load, time.Second).Should(Equal(int32(1)))
			Consistently(fin.Load, 200*time.Millisecond).Should(Equal(int32(1)))
		})

		It("should wait for live connections on a graceful shutdown", func() {
			tgt := echoServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			cli, err := net.Dial("tcp", l.GetBindable())
			Expect(err).ToNot(HaveOccurred())

			_, err = cli.Write([]byte("ping"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 4)
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())

			eng.StartShutdown(false)
			Consistently(fin.Load, 200*time.Millisecond).Should(Equal(int32(0)))

			_ = cli.Close()
			Eventually(fin.Load, time.Second).Should(Equal(int32(1)))
		})

		It("should force close every connection on a barbaric shutdown", func() {
			tgt := sinkServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			var clis []net.Conn
			for i := 0; i < 3; i++ {
				cli, err := net.Dial("tcp", l.GetBindable())
				Expect(err).ToNot(HaveOccurred())

				_, err = cli.Write([]byte("x"))
				Expect(err).ToNot(HaveOccurred())

				clis = append(clis, cli)
			}

			Eventually(func() string {
				return string(tgt.Received())
			}, time.Second).Should(Equal("xxx"))
			Expect(eng.OpenConnections()).To(Equal(int64(3)))

			eng.StartShutdown(true)

			Eventually(eng.OpenConnections, time.Second).Should(Equal(int64(0)))
			Eventually(fin.Load, time.Second).Should(Equal(int32(1)))

			for _, cli := range clis {
				one := make([]byte, 1)
				_, err := cli.Read(one)
				Expect(err).To(HaveOccurred())
				_ = cli.Close()
			}
		})

		It("should free all listeners idempotently", func() {
			tgt := echoServer()
			defer tgt.Stop()

			l := startListener(eng, stgrly.Config{
				Mode:     stgrly.ModeSimpleClient,
				Target:   tgt.Addr(),
				Protocol: null.Name,
			})

			adr := l.GetBindable()
			Expect(eng.Listeners()).To(Equal(1))

			eng.FreeAllListeners()
			eng.FreeAllListeners()
			Expect(eng.Listeners()).To(Equal(0))

			Eventually(func() error {
				c, err := net.Dial("tcp", adr)
				if err == nil {
					_ = c.Close()
				}
				return err
			}, time.Second).Should(HaveOccurred())
		})

		It("should refuse a new listener once shutting down", func() {
			eng.StartShutdown(false)

			l, err := eng.NewListener(stgrly.Config{
				Mode:     stgrly.ModeSocksClient,
				Bind:     "127.0.0.1:0",
				Protocol: null.Name,
			})

			Expect(l).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(stgrly.ErrorShuttingDown)).To(BeTrue())
		})
	})
})

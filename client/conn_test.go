package client_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/auctioneer/client"
	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/transport"
)

// fakeServer answers every datagram with reply, or stays silent when
// reply is empty, and counts what it receives.
type fakeServer struct {
	conn     net.PacketConn
	received int32
}

func startFakeServer(reply string) *fakeServer {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	Expect(err).To(Succeed())

	s := &fakeServer{conn: conn}

	go func() {
		buf := make([]byte, 1024)
		for {
			_, remote, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}

			atomic.AddInt32(&s.received, 1)
			if reply != "" {
				_, _ = conn.WriteTo([]byte(reply), remote)
			}
		}
	}()

	return s
}

func (s *fakeServer) port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *fakeServer) count() int32 {
	return atomic.LoadInt32(&s.received)
}

var _ = Describe("client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Datagram()", func() {
		var server *fakeServer

		AfterEach(func() {
			server.conn.Close()
		})

		newClient := func() *client.Client {
			return client.New(client.Options{
				Host:     "127.0.0.1",
				Port:     server.port(),
				Timeout:  50 * time.Millisecond,
				Attempts: 3,
				Log:      zap.NewNop(),
			})
		}

		It("gives up after exactly the configured attempts", func() {
			server = startFakeServer("")

			_, err := newClient().Login(ctx, "123456", "abcdefgh")
			Expect(errors.Is(err, transport.ErrConnectionTimeout)).To(BeTrue())
			Expect(client.Classify(err)).To(Equal(client.NoAnswer))

			Eventually(server.count).Should(BeEquivalentTo(3))
			Consistently(server.count, 200*time.Millisecond).Should(BeEquivalentTo(3))
		})

		It("treats a closed port as no answer", func() {
			server = startFakeServer("")
			Expect(server.conn.Close()).To(Succeed())

			start := time.Now()
			_, err := newClient().Login(ctx, "123456", "abcdefgh")
			Expect(errors.Is(err, transport.ErrConnectionTimeout)).To(BeTrue())
			Expect(client.Classify(err)).To(Equal(client.NoAnswer))
			Expect(err).To(MatchError(ContainSubstring("after 3 attempts")))
			Expect(time.Since(start)).To(BeNumerically(">=", 150*time.Millisecond))
		})

		It("ignores answers from another address", func() {
			conn, err := net.ListenPacket("udp", "127.0.0.1:0")
			Expect(err).To(Succeed())
			server = &fakeServer{conn: conn}

			stranger, err := net.ListenPacket("udp", "127.0.0.1:0")
			Expect(err).To(Succeed())
			defer stranger.Close()

			// Answer every request from the stranger's socket instead.
			go func() {
				buf := make([]byte, 1024)
				for {
					_, remote, err := server.conn.ReadFrom(buf)
					if err != nil {
						return
					}
					atomic.AddInt32(&server.received, 1)
					_, _ = stranger.WriteTo([]byte("RLI OK\n"), remote)
				}
			}()

			_, err = newClient().Login(ctx, "123456", "abcdefgh")
			Expect(client.Classify(err)).To(Equal(client.NoAnswer))
		})

		It("does not retry a malformed answer", func() {
			server = startFakeServer("RLI WHAT\n")

			_, err := newClient().Login(ctx, "123456", "abcdefgh")
			Expect(client.Classify(err)).To(Equal(client.InvalidFormat))
			Consistently(server.count, 200*time.Millisecond).Should(BeEquivalentTo(1))
		})

		It("does not retry an answer of the wrong type", func() {
			server = startFakeServer("RLO OK\n")

			_, err := newClient().Login(ctx, "123456", "abcdefgh")
			Expect(client.Classify(err)).To(Equal(client.UnexpectedType))
			Consistently(server.count, 200*time.Millisecond).Should(BeEquivalentTo(1))
		})

		It("reports ERR answers as rejected", func() {
			server = startFakeServer("ERR\n")

			_, err := newClient().List(ctx)
			Expect(client.Classify(err)).To(Equal(client.PeerRejected))
		})

		It("reports a status level ERR as rejected", func() {
			server = startFakeServer("RLI ERR\n")

			status, err := newClient().Login(ctx, "123456", "abcdefgh")
			Expect(status).To(Equal(protocol.StatusERR))
			Expect(client.Classify(err)).To(Equal(client.PeerRejected))

			var exErr *client.ExchangeError
			Expect(errors.As(err, &exErr)).To(BeTrue())
			Expect(exErr.Code).To(Equal(protocol.LIN))
		})

		It("stops waiting when cancelled", func() {
			server = startFakeServer("")

			ctx, cancel := context.WithCancel(ctx)
			time.AfterFunc(20*time.Millisecond, cancel)

			c := client.New(client.Options{Host: "127.0.0.1", Port: server.port(), Timeout: 5 * time.Second})
			_, err := c.List(ctx)
			Expect(errors.Is(err, transport.ErrCancelled)).To(BeTrue())
		})

		It("refuses to send out of bound fields", func() {
			server = startFakeServer("")

			_, err := newClient().Login(ctx, "12345", "abcdefgh")
			Expect(errors.Is(err, protocol.ErrBuild)).To(BeTrue())
			Consistently(server.count, 100*time.Millisecond).Should(BeZero())
		})
	})

	Describe("Stream()", func() {
		var listener net.Listener

		BeforeEach(func() {
			var err error
			listener, err = net.Listen("tcp", "127.0.0.1:0")
			Expect(err).To(Succeed())
		})

		AfterEach(func() {
			listener.Close()
		})

		newClient := func() *client.Client {
			return client.New(client.Options{
				Host:          "127.0.0.1",
				Port:          listener.Addr().(*net.TCPAddr).Port,
				StreamTimeout: 200 * time.Millisecond,
				Log:           zap.NewNop(),
			})
		}

		// serve answers the first connection with reply and closes it.
		serve := func(reply []byte) {
			go func() {
				defer GinkgoRecover()

				conn, err := listener.Accept()
				if err != nil {
					return
				}
				defer conn.Close()

				buf := make([]byte, 256)
				_, _ = conn.Read(buf)
				_, _ = conn.Write(reply)
			}()
		}

		It("reads a short asset as a receive failure", func() {
			reply := append([]byte("RSA OK vase.jpg 500 "), make([]byte, 480)...)
			serve(reply)

			_, err := newClient().ShowAsset(ctx, "001")
			Expect(client.Classify(err)).To(Equal(client.ReceiveFailed))
		})

		It("times out on a silent server", func() {
			go func() {
				conn, err := listener.Accept()
				if err != nil {
					return
				}
				time.Sleep(time.Second)
				conn.Close()
			}()

			_, err := newClient().Bid(ctx, "654321", "xxxxxxxx", "001", 150)
			Expect(client.Classify(err)).To(Equal(client.NoAnswer))
		})

		It("cannot send to a closed port", func() {
			c := newClient()
			listener.Close()

			_, err := c.Close(ctx, "123456", "abcdefgh", "001")
			Expect(client.Classify(err)).To(Equal(client.SendFailed))
		})
	})

	table.DescribeTable("Classify()",
		func(err error, failure client.Failure) {
			Expect(client.Classify(err)).To(Equal(failure))
		},
		table.Entry("nil", nil, client.Unknown),
		table.Entry("protocol error", protocol.ErrProtocolError, client.PeerRejected),
		table.Entry("malformed", protocol.ErrMalformedMessage, client.InvalidFormat),
		table.Entry("unexpected type", protocol.ErrUnexpectedType, client.UnexpectedType),
		table.Entry("timeout", transport.ErrConnectionTimeout, client.NoAnswer),
		table.Entry("send", transport.ErrMessageSend, client.SendFailed),
		table.Entry("receive", transport.ErrMessageReceive, client.ReceiveFailed),
		table.Entry("cancelled", transport.ErrCancelled, client.Unknown),
		table.Entry("wrapped", &client.ExchangeError{Code: protocol.BID, Err: transport.ErrMessageSend}, client.SendFailed),
	)
})

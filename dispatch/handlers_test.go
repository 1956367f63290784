package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/auctioneer/dispatch"
	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/storage"
	"github.com/luma/auctioneer/transport"
)

// exchange runs request through registry and returns what was sent back.
func exchange(registry *transport.Registry, request string) (string, error) {
	var reply []byte

	ex := transport.NewExchange(transport.NewDatagram([]byte(request)), nil, func(b []byte) error {
		reply = append(reply, b...)
		return nil
	})

	err := registry.Dispatch(context.Background(), ex)
	return string(reply), err
}

// brokenStore answers login with a result no status exists for.
type brokenStore struct {
	storage.Store
}

func (brokenStore) RegisterOrLogin(context.Context, string, string) (storage.LoginResult, error) {
	return storage.LoginResult(42), nil
}

// failingStore fails every bid.
type failingStore struct {
	storage.Store
}

func (failingStore) Bid(context.Context, string, string, string, int) (storage.BidResult, error) {
	return 0, errors.New("disk on fire")
}

var _ = Describe("dispatch", func() {
	var (
		store    *storage.InmemoryStore
		now      time.Time
		datagram *transport.Registry
		stream   *transport.Registry
	)

	udp := func(request string) string {
		reply, err := exchange(datagram, request)
		Expect(err).To(Succeed())
		return reply
	}

	tcp := func(request string) string {
		reply, err := exchange(stream, request)
		Expect(err).To(Succeed())
		return reply
	}

	BeforeEach(func() {
		now = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

		store = storage.NewInmemoryStore()
		store.SetClock(func() time.Time { return now })

		handlers := dispatch.New(store, zap.NewNop())
		datagram = handlers.DatagramRegistry()
		stream = handlers.StreamRegistry()
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("scenarios", func() {
		It("registers a new user", func() {
			Expect(udp("LIN 123456 abcdefgh\n")).To(Equal("RLI REG\n"))
			Expect(udp("LIN 123456 abcdefgh\n")).To(Equal("RLI OK\n"))
			Expect(udp("LIN 123456 wrongpwd\n")).To(Equal("RLI NOK\n"))
		})

		It("refuses a bid on the bidder's own auction", func() {
			Expect(store.Restore([]byte(`{"next":41}`))).To(Succeed())
			Expect(udp("LIN 654321 xxxxxxxx\n")).To(Equal("RLI REG\n"))
			Expect(tcp("OPA 654321 xxxxxxxx vase 100 600 vase.jpg 4 JPEG\n")).To(Equal("ROA OK 042\n"))

			Expect(tcp("BID 654321 xxxxxxxx 042 00150\n")).To(Equal("RBD ILG\n"))
		})

		It("reports an empty listing as NOK", func() {
			Expect(udp("LST\n")).To(Equal("RLS NOK\n"))
		})
	})

	Describe("datagram requests", func() {
		BeforeEach(func() {
			udp("LIN 123456 abcdefgh\n")
			udp("LIN 654321 xxxxxxxx\n")
		})

		It("logs users out and unregisters them", func() {
			Expect(udp("LOU 111111 abcdefgh\n")).To(Equal("RLO UNR\n"))
			Expect(udp("LOU 123456 abcdefgh\n")).To(Equal("RLO OK\n"))
			Expect(udp("LOU 123456 abcdefgh\n")).To(Equal("RLO NOK\n"))
			Expect(udp("UNR 654321 xxxxxxxx\n")).To(Equal("RUR OK\n"))
			Expect(udp("UNR 654321 xxxxxxxx\n")).To(Equal("RUR UNR\n"))
		})

		It("lists auctions with their state", func() {
			Expect(udp("LMA 123456\n")).To(Equal("RMA NOK\n"))
			Expect(udp("LMA 111111\n")).To(Equal("RMA NLG\n"))

			Expect(tcp("OPA 123456 abcdefgh vase 100 600 vase.jpg 4 JPEG\n")).To(Equal("ROA OK 001\n"))
			Expect(tcp("OPA 123456 abcdefgh lamp 100 600 lamp.jpg 4 JPEG\n")).To(Equal("ROA OK 002\n"))
			Expect(tcp("CLS 123456 abcdefgh 001\n")).To(Equal("RCL OK\n"))
			Expect(tcp("BID 654321 xxxxxxxx 002 100\n")).To(Equal("RBD ACC\n"))

			Expect(udp("LMA 123456\n")).To(Equal("RMA OK 001 0 002 1\n"))
			Expect(udp("LMB 654321\n")).To(Equal("RMB OK 002 1\n"))
			Expect(udp("LMB 123456\n")).To(Equal("RMB NOK\n"))
			Expect(udp("LST\n")).To(Equal("RLS OK 001 0 002 1\n"))
		})

		It("shows the record of an auction", func() {
			Expect(udp("SRC 001\n")).To(Equal("RRC NOK\n"))

			Expect(tcp("OPA 123456 abcdefgh vase 100 600 vase.jpg 4 JPEG\n")).To(Equal("ROA OK 001\n"))
			now = now.Add(30 * time.Second)
			Expect(tcp("BID 654321 xxxxxxxx 001 150\n")).To(Equal("RBD ACC\n"))

			Expect(udp("SRC 001\n")).To(Equal(
				"RRC OK 123456 vase vase.jpg 100 2024-03-01 12:30:00 600" +
					" B 654321 150 2024-03-01 12:30:30 30\n"))

			now = now.Add(30 * time.Second)
			Expect(tcp("CLS 123456 abcdefgh 001\n")).To(Equal("RCL OK\n"))

			Expect(udp("SRC 001\n")).To(Equal(
				"RRC OK 123456 vase vase.jpg 100 2024-03-01 12:30:00 600" +
					" B 654321 150 2024-03-01 12:30:30 30" +
					" E 2024-03-01 12:31:00 60\n"))
		})

		It("reports only the most recent bids", func() {
			Expect(tcp("OPA 123456 abcdefgh vase 100 600 vase.jpg 4 JPEG\n")).To(Equal("ROA OK 001\n"))
			for i := 0; i < 60; i++ {
				Expect(tcp(fmt.Sprintf("BID 654321 xxxxxxxx 001 %d\n", 100+i))).To(Equal("RBD ACC\n"))
			}

			var resp protocol.ShowRecordResponse
			Expect(protocol.Unmarshal(transport.NewDatagram([]byte(udp("SRC 001\n"))), &resp)).To(Succeed())
			Expect(resp.Record.Bids).To(HaveLen(protocol.MaxBidsReported))
			Expect(resp.Record.Bids[0].Value).To(Equal(110))
			Expect(resp.Record.Bids[protocol.MaxBidsReported-1].Value).To(Equal(159))
		})
	})

	Describe("stream requests", func() {
		BeforeEach(func() {
			udp("LIN 123456 abcdefgh\n")
			udp("LIN 654321 xxxxxxxx\n")
			Expect(tcp("OPA 123456 abcdefgh vase 100 600 vase.jpg 5 JP\nEG\n")).To(Equal("ROA OK 001\n"))
		})

		It("returns the asset as uploaded", func() {
			Expect(tcp("SAS 001\n")).To(Equal("RSA OK vase.jpg 5 JP\nEG\n"))
			Expect(tcp("SAS 002\n")).To(Equal("RSA NOK\n"))
		})

		It("refuses users who are not logged in", func() {
			Expect(tcp("OPA 111111 abcdefgh vase 100 600 vase.jpg 1 x\n")).To(Equal("ROA NLG\n"))
			Expect(tcp("BID 654321 wrongpwd 001 150\n")).To(Equal("RBD NLG\n"))
		})

		table.DescribeTable("maps close results",
			func(request, reply string) {
				Expect(tcp(request)).To(Equal(reply))
			},
			table.Entry("wrong password", "CLS 123456 wrongpwd 001\n", "RCL NOK\n"),
			table.Entry("missing auction", "CLS 123456 abcdefgh 002\n", "RCL EAU\n"),
			table.Entry("someone else's auction", "CLS 654321 xxxxxxxx 001\n", "RCL EOW\n"),
			table.Entry("own auction", "CLS 123456 abcdefgh 001\n", "RCL OK\n"),
		)

		It("maps the remaining close and bid results", func() {
			Expect(tcp("BID 654321 xxxxxxxx 001 99\n")).To(Equal("RBD REF\n"))
			Expect(tcp("BID 654321 xxxxxxxx 002 150\n")).To(Equal("RBD NOK\n"))

			Expect(tcp("CLS 123456 abcdefgh 001\n")).To(Equal("RCL OK\n"))
			Expect(tcp("CLS 123456 abcdefgh 001\n")).To(Equal("RCL END\n"))

			Expect(udp("LOU 123456 abcdefgh\n")).To(Equal("RLO OK\n"))
			Expect(tcp("CLS 123456 abcdefgh 001\n")).To(Equal("RCL NLG\n"))
		})
	})

	Describe("errors", func() {
		It("answers a malformed body with the response's ERR status", func() {
			Expect(udp("LIN 12345 abcdefgh\n")).To(Equal("RLI ERR\n"))
			Expect(udp("LST now\n")).To(Equal("RLS ERR\n"))
			Expect(tcp("BID 654321 xxxxxxxx 42 150\n")).To(Equal("RBD ERR\n"))
		})

		It("answers unknown codes with ERR", func() {
			Expect(udp("XYZ\n")).To(Equal("ERR\n"))
			Expect(udp("lin 123456 abcdefgh\n")).To(Equal("ERR\n"))
		})

		It("keeps each registry to its own transport", func() {
			Expect(udp("SAS 001\n")).To(Equal("ERR\n"))
			Expect(tcp("LST\n")).To(Equal("ERR\n"))
		})

		It("fails on a result the store should never return", func() {
			registry := dispatch.New(brokenStore{}, nil).DatagramRegistry()

			reply, err := exchange(registry, "LIN 123456 abcdefgh\n")
			Expect(errors.Is(err, dispatch.ErrUnknownResult)).To(BeTrue())
			Expect(reply).To(BeEmpty())
		})

		It("returns store failures without replying", func() {
			registry := dispatch.New(failingStore{}, nil).StreamRegistry()

			reply, err := exchange(registry, "BID 654321 xxxxxxxx 001 150\n")
			Expect(err).To(MatchError(ContainSubstring("disk on fire")))
			Expect(reply).To(BeEmpty())
		})
	})
})

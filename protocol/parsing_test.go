package protocol_test

import (
	"bytes"
	"errors"
	"io"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/transport"
)

func datagram(s string) *transport.Datagram {
	return transport.NewDatagram([]byte(s))
}

var _ = Describe("Parsing", func() {
	Describe("ReadCode()", func() {
		It("reads only the type code", func() {
			src := datagram("LIN 123456 abcdefgh\n")
			code, err := protocol.ReadCode(src)
			Expect(err).To(Succeed())
			Expect(code).To(Equal(protocol.LIN))
			Expect(src.Remaining()).To(Equal(len(" 123456 abcdefgh\n")))
		})

		It("rejects codes longer than three letters", func() {
			_, err := protocol.ReadCode(datagram("LINX 123456\n"))
			Expect(errors.Is(err, protocol.ErrMalformedMessage)).To(BeTrue())
		})

		It("rejects lower case codes", func() {
			_, err := protocol.ReadCode(datagram("lin 123456 abcdefgh\n"))
			Expect(errors.Is(err, protocol.ErrMalformedMessage)).To(BeTrue())
		})

		It("passes through errors from the source", func() {
			_, err := protocol.ReadCode(bytes.NewReader(nil))
			Expect(err).To(MatchError(io.EOF))
		})
	})

	Describe("Unmarshal()", func() {
		It("decodes the login example", func() {
			var req protocol.LoginRequest
			Expect(protocol.Unmarshal(datagram("LIN 123456 abcdefgh\n"), &req)).To(Succeed())
			Expect(req).To(Equal(protocol.LoginRequest{UID: "123456", Password: "abcdefgh"}))
		})

		It("accepts leading zeros in numbers", func() {
			var req protocol.BidRequest
			Expect(protocol.Unmarshal(datagram("BID 654321 xxxxxxxx 042 00150\n"), &req)).To(Succeed())
			Expect(req.Value).To(Equal(150))
			Expect(req.AID).To(Equal("042"))
		})

		It("decodes a record listing without bids", func() {
			var resp protocol.ShowRecordResponse
			err := protocol.Unmarshal(datagram("RRC OK 123456 vase v.jpg 100 2024-03-01 12:30:00 600\n"), &resp)
			Expect(err).To(Succeed())
			Expect(resp.Record.Start).To(Equal(startedAt))
			Expect(resp.Record.Bids).To(BeEmpty())
			Expect(resp.Record.End).To(BeNil())
		})

		It("reads exactly the declared asset length", func() {
			var req protocol.OpenRequest
			err := protocol.Unmarshal(datagram("OPA 123456 abcdefgh vase 100 600 v.txt 3 \n\n\n\n"), &req)
			Expect(err).To(Succeed())
			Expect(req.Asset).To(Equal([]byte("\n\n\n")))
		})

		It("reports a bare ERR as a protocol error", func() {
			err := protocol.Unmarshal(datagram("ERR\n"), &protocol.LoginResponse{})
			Expect(err).To(MatchError(protocol.ErrProtocolError))
		})

		It("decodes a status level ERR as a response", func() {
			var resp protocol.CloseResponse
			Expect(protocol.Unmarshal(datagram("RCL ERR\n"), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(protocol.StatusERR))
		})

		It("reports a different response code as an unexpected type", func() {
			err := protocol.Unmarshal(datagram("RLO OK\n"), &protocol.LoginResponse{})
			Expect(errors.Is(err, protocol.ErrUnexpectedType)).To(BeTrue())
			Expect(errors.Is(err, protocol.ErrMalformedMessage)).To(BeFalse())
		})

		It("reports a missing code as an unexpected type", func() {
			err := protocol.Unmarshal(datagram("\n"), &protocol.LoginResponse{})
			Expect(errors.Is(err, protocol.ErrUnexpectedType)).To(BeTrue())
		})

		It("rejects trailing bytes after the terminator", func() {
			err := protocol.Unmarshal(datagram("RLI OK\nRLI OK\n"), &protocol.LoginResponse{})
			Expect(errors.Is(err, protocol.ErrMalformedMessage)).To(BeTrue())
		})

		It("stops at the terminator of a stream", func() {
			src := bytes.NewReader([]byte("RLI OK\nnext"))
			Expect(protocol.Unmarshal(src, &protocol.LoginResponse{})).To(Succeed())
			Expect(src.Len()).To(Equal(4))
		})

		table.DescribeTable("rejects input that violates the grammar",
			func(input string, m protocol.Message) {
				err := protocol.Unmarshal(datagram(input), m)
				Expect(errors.Is(err, protocol.ErrMalformedMessage)).To(BeTrue(), "error was %v", err)
			},
			table.Entry("missing separator", "LIN123456 abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("double separator", "LIN 123456  abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("oversized UID", "LIN 1234567 abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("short UID", "LIN 12345 abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("all zero UID", "LIN 000000 abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("letter in UID", "LIN 12345a abcdefgh\n", &protocol.LoginRequest{}),
			table.Entry("symbol in password", "LIN 123456 abc!efgh\n", &protocol.LoginRequest{}),
			table.Entry("missing terminator", "LIN 123456 abcdefgh", &protocol.LoginRequest{}),
			table.Entry("CRLF terminator", "LIN 123456 abcdefgh\r\n", &protocol.LoginRequest{}),
			table.Entry("extra field", "LST 001\n", &protocol.ListRequest{}),
			table.Entry("oversized value", "BID 654321 xxxxxxxx 042 1234567\n", &protocol.BidRequest{}),
			table.Entry("zero time active", "OPA 123456 abcdefgh vase 100 0 v.txt 1 x\n", &protocol.OpenRequest{}),
			table.Entry("asset longer than declared", "OPA 123456 abcdefgh vase 100 60 v.txt 1 xy\n", &protocol.OpenRequest{}),
			table.Entry("asset size over the limit", "OPA 123456 abcdefgh vase 100 60 v.txt 99999999 x\n", &protocol.OpenRequest{}),
			table.Entry("status outside the set", "RLI ACC\n", &protocol.LoginResponse{}),
			table.Entry("lower case status", "RLI ok\n", &protocol.LoginResponse{}),
			table.Entry("OK listing without auctions", "RLS OK\n", &protocol.ListResponse{}),
			table.Entry("NOK listing with auctions", "RMA NOK 001 1\n", &protocol.MyAuctionsResponse{}),
			table.Entry("bad auction state", "RLS OK 001 2\n", &protocol.ListResponse{}),
			table.Entry("bad date", "RRC OK 123456 vase v.jpg 100 2024-13-01 12:30:00 600\n", &protocol.ShowRecordResponse{}),
			table.Entry("unknown record entry", "RRC OK 123456 vase v.jpg 100 2024-03-01 12:30:00 600 X 1\n", &protocol.ShowRecordResponse{}),
			table.Entry("bid after end", "RRC OK 123456 vase v.jpg 100 2024-03-01 12:30:00 600"+
				" E 2024-03-01 12:40:00 600 B 654321 150 2024-03-01 12:30:30 30\n", &protocol.ShowRecordResponse{}),
			table.Entry("AID missing on OK open", "ROA OK\n", &protocol.OpenResponse{}),
		)

		It("fails at every truncation point of a datagram", func() {
			full := "RRC OK 123456 vase vase_01.jpg 100 2024-03-01 12:30:00 600" +
				" B 654321 150 2024-03-01 12:30:30 30 E 2024-03-01 12:40:00 600\n"

			for i := 0; i < len(full); i++ {
				err := protocol.Unmarshal(datagram(full[:i]), &protocol.ShowRecordResponse{})
				Expect(err).To(HaveOccurred(), "truncated at %d", i)
				Expect(errors.Is(err, protocol.ErrMalformedMessage) || errors.Is(err, protocol.ErrUnexpectedType)).
					To(BeTrue(), "truncated at %d: %v", i, err)
			}

			Expect(protocol.Unmarshal(datagram(full), &protocol.ShowRecordResponse{})).To(Succeed())
		})
	})

	Describe("UnmarshalBody()", func() {
		It("decodes the fields after ReadCode", func() {
			src := datagram("CLS 123456 abcdefgh 007\n")

			code, err := protocol.ReadCode(src)
			Expect(err).To(Succeed())
			Expect(code).To(Equal(protocol.CLS))

			var req protocol.CloseRequest
			Expect(protocol.UnmarshalBody(src, &req)).To(Succeed())
			Expect(req.AID).To(Equal("007"))
		})
	})
})

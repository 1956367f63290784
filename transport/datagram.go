package transport

import (
	"errors"
	"fmt"

	"github.com/luma/auctioneer/protocol"
)

var errTruncated = fmt.Errorf("%w: datagram is truncated", protocol.ErrMalformedMessage)

// Datagram is a protocol.Source over one complete, already received
// datagram. Reads never block; running out of bytes means the datagram
// was truncated.
type Datagram struct {
	buf []byte
	pos int

	// last is the index of the last byte returned by ReadByte, or -1
	last int
}

func NewDatagram(buf []byte) *Datagram {
	return &Datagram{buf: buf, last: -1}
}

func (d *Datagram) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		d.last = -1
		return 0, errTruncated
	}

	b := d.buf[d.pos]
	d.last = d.pos
	d.pos++
	return b, nil
}

func (d *Datagram) UnreadByte() error {
	if d.last < 0 || d.last != d.pos-1 {
		return errors.New("transport: UnreadByte without a preceding ReadByte")
	}

	d.pos = d.last
	d.last = -1
	return nil
}

// Read copies up to len(p) bytes. Asking for more than remains is a
// truncation, as the codec only reads lengths the message declared.
func (d *Datagram) Read(p []byte) (int, error) {
	d.last = -1

	if len(p) == 0 {
		return 0, nil
	}

	if d.pos >= len(d.buf) {
		return 0, errTruncated
	}

	n := copy(p, d.buf[d.pos:])
	d.pos += n

	if n < len(p) {
		return n, errTruncated
	}

	return n, nil
}

// Remaining returns the number of unread bytes.
func (d *Datagram) Remaining() int {
	return len(d.buf) - d.pos
}

var _ protocol.Source = (*Datagram)(nil)
var _ protocol.Remainer = (*Datagram)(nil)

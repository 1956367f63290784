package protocol

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

var (
	ErrMalformedMessage = errors.New("Message is malformed")
	ErrUnexpectedType   = errors.New("Message has an unexpected type code")
	ErrProtocolError    = errors.New("Peer signaled a protocol error")
	ErrBuild            = errors.New("Message could not be built")
)

// Source is the pull interface the codec decodes from. One byte of
// pushback must be supported after every ReadByte.
type Source interface {
	io.ByteScanner
	io.Reader
}

// Remainer is implemented by sources that know how many bytes are left
// once a message has been decoded, such as a complete datagram.
type Remainer interface {
	Remaining() int
}

// Message is one of the closed set of request and response types.
type Message interface {
	Code() Code

	encode(w *writer)
	decode(r *reader)
}

// ReadCode reads the type code from the provided Source and nothing else.
func ReadCode(src Source) (Code, error) {
	r := &reader{src: src}
	code := r.code()
	return code, r.err
}

// Unmarshal reads a complete message of m's type from src into m.
//
// A bare ERR is reported as ErrProtocolError and any other type code
// as ErrUnexpectedType, so the caller can tell them apart from a garbled
// body, which is reported as ErrMalformedMessage.
func Unmarshal(src Source, m Message) error {
	code, err := ReadCode(src)
	if err != nil {
		if errors.Is(err, ErrMalformedMessage) {
			return fmt.Errorf("%w: %v", ErrUnexpectedType, err)
		}
		return err
	}

	if code == ERR {
		return ErrProtocolError
	}

	if code != m.Code() {
		return fmt.Errorf("%w: got %s, expected %s", ErrUnexpectedType, code, m.Code())
	}

	return UnmarshalBody(src, m)
}

// UnmarshalBody reads the fields of m from src. The type code must have
// been consumed already, usually by ReadCode.
func UnmarshalBody(src Source, m Message) error {
	r := &reader{src: src}
	m.decode(r)

	if r.err != nil {
		return r.err
	}

	if rem, ok := src.(Remainer); ok && rem.Remaining() > 0 {
		return fmt.Errorf("%w: %d trailing bytes after %s", ErrMalformedMessage, rem.Remaining(), m.Code())
	}

	return nil
}

// reader decodes fields in order. The first error sticks and every later
// call becomes a no-op, so decoders read like the grammar they implement.
type reader struct {
	src Source
	err error
}

func (r *reader) failf(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, args...))
	}
}

func (r *reader) next() byte {
	if r.err != nil {
		return 0
	}

	b, err := r.src.ReadByte()
	if err != nil {
		r.err = err
		return 0
	}

	return b
}

func (r *reader) unread() {
	if r.err != nil {
		return
	}

	if err := r.src.UnreadByte(); err != nil {
		r.err = err
	}
}

func (r *reader) expect(want byte, what string) {
	b := r.next()
	if r.err == nil && b != want {
		r.failf("expected %s, got %q", what, b)
	}
}

func (r *reader) space() {
	r.expect(' ', "separator")
}

func (r *reader) end() {
	r.expect('\n', "terminator")
}

// token reads between min and max bytes of class. The first byte outside
// the class is pushed back for the next rule to judge.
func (r *reader) token(what string, min, max int, class func(byte) bool) string {
	buf := make([]byte, 0, max)

	for r.err == nil {
		b := r.next()
		if r.err != nil {
			break
		}

		if !class(b) {
			r.unread()
			break
		}

		if len(buf) == max {
			r.failf("%s exceeds %d bytes", what, max)
			break
		}

		buf = append(buf, b)
	}

	if r.err == nil && len(buf) < min {
		r.failf("%s is shorter than %d bytes", what, min)
	}

	return string(buf)
}

func (r *reader) number(what string, maxLen int) int {
	s := r.token(what, 1, maxLen, isDigit)
	if r.err != nil {
		return 0
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		r.failf("%s %q is not a number", what, s)
	}

	return n
}

func (r *reader) code() Code {
	return Code(r.token("type code", CodeLen, CodeLen, isStatusChar))
}

func (r *reader) uid() string {
	s := r.token("UID", UIDLen, UIDLen, isDigit)
	if r.err == nil && !ValidUID(s) {
		r.failf("UID must not be all zero")
	}

	return s
}

func (r *reader) password() string {
	return r.token("password", PasswordLen, PasswordLen, isAlnum)
}

func (r *reader) aid() string {
	return r.token("AID", AIDLen, AIDLen, isDigit)
}

func (r *reader) name() string {
	return r.token("auction name", 1, MaxNameLen, isAlnum)
}

func (r *reader) filename() string {
	return r.token("filename", 1, MaxFilenameLen, isFilenameChar)
}

func (r *reader) value() int {
	return r.number("value", MaxValueLen)
}

func (r *reader) duration() int {
	n := r.number("time active", MaxDurationLen)
	if r.err == nil && n == 0 {
		r.failf("time active must not be zero")
	}

	return n
}

func (r *reader) seconds() int {
	return r.number("seconds", MaxDurationLen)
}

func (r *reader) status(set []Status) Status {
	s := Status(r.token("status", 2, maxStatusLen, isStatusChar))
	if r.err == nil && !statusIn(s, set) {
		r.failf("status %q is not valid here", s)
	}

	return s
}

func (r *reader) state() bool {
	switch r.next() {
	case '1':
		return true
	case '0':
		return false
	default:
		r.failf("auction state must be 0 or 1")
		return false
	}
}

func (r *reader) dateTime() time.Time {
	date := r.token("date", 10, 10, isDateChar)
	r.space()
	clock := r.token("time", 8, 8, isTimeChar)
	if r.err != nil {
		return time.Time{}
	}

	t, err := time.Parse(DateTimeLayout, date+" "+clock)
	if err != nil {
		r.failf("bad date-time %q: %v", date+" "+clock, err)
	}

	return t
}

// asset reads a length-prefixed binary segment: Fsize, a separator and
// exactly Fsize raw bytes.
func (r *reader) asset() []byte {
	size := r.number("file size", MaxSizeLen)
	r.space()
	if r.err != nil {
		return nil
	}

	if size > MaxAssetSize {
		r.failf("file size %d exceeds %d", size, MaxAssetSize)
		return nil
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.src, data); err != nil {
		r.err = err
		return nil
	}

	return data
}

// auctionStates reads the optional "[ AID state]*" tail of a listing and
// its terminator. OK listings must carry at least one pair.
func (r *reader) auctionStates(status Status) []AuctionState {
	var states []AuctionState

	for r.err == nil {
		b := r.next()
		if r.err != nil || b == '\n' {
			break
		}

		if b != ' ' {
			r.failf("expected separator, got %q", b)
			break
		}

		aid := r.aid()
		r.space()
		active := r.state()
		states = append(states, AuctionState{AID: aid, Active: active})
	}

	if r.err != nil {
		return nil
	}

	if status == StatusOK && len(states) == 0 {
		r.failf("OK listing carries no auctions")
	}

	if status != StatusOK && len(states) > 0 {
		r.failf("%s listing carries auctions", status)
	}

	return states
}

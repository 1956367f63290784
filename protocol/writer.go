package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

var (
	Separator  = []byte(" ")
	Terminator = []byte("\n")
)

// Marshal returns the canonical encoding of m, newline included.
//
// It fails with ErrBuild when a field is missing or out of bounds, which
// is always a programming error on the sending side.
func Marshal(m Message) ([]byte, error) {
	w := &writer{}
	w.buf.WriteString(string(m.Code()))

	m.encode(w)
	if w.err != nil {
		return nil, w.err
	}

	w.buf.Write(Terminator)
	return w.buf.Bytes(), nil
}

type writer struct {
	buf bytes.Buffer
	err error
}

func (w *writer) failf(format string, args ...interface{}) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %s", ErrBuild, fmt.Sprintf(format, args...))
	}
}

func (w *writer) field(ok bool, what, s string) {
	if w.err != nil {
		return
	}

	if !ok {
		w.failf("invalid %s %q", what, s)
		return
	}

	w.buf.Write(Separator)
	w.buf.WriteString(s)
}

func (w *writer) uid(s string)      { w.field(ValidUID(s), "UID", s) }
func (w *writer) password(s string) { w.field(ValidPassword(s), "password", s) }
func (w *writer) aid(s string)      { w.field(ValidAID(s), "AID", s) }
func (w *writer) name(s string)     { w.field(ValidName(s), "auction name", s) }
func (w *writer) filename(s string) { w.field(ValidFilename(s), "filename", s) }

func (w *writer) value(v int) {
	w.field(ValidValue(v), "value", strconv.Itoa(v))
}

func (w *writer) duration(v int) {
	w.field(ValidDuration(v), "time active", strconv.Itoa(v))
}

func (w *writer) seconds(v int) {
	w.field(validSeconds(v), "seconds", strconv.Itoa(v))
}

func (w *writer) status(s Status, set []Status) {
	w.field(statusIn(s, set), "status", string(s))
}

func (w *writer) state(active bool) {
	if active {
		w.field(true, "state", "1")
	} else {
		w.field(true, "state", "0")
	}
}

func (w *writer) dateTime(t time.Time) {
	w.field(!t.IsZero(), "date-time", formatDateTime(t))
}

func (w *writer) asset(data []byte) {
	w.field(validAsset(data), "file size", strconv.Itoa(len(data)))
	if w.err != nil {
		return
	}

	w.buf.Write(Separator)
	w.buf.Write(data)
}

func (w *writer) auctionStates(status Status, states []AuctionState) {
	if status == StatusOK && len(states) == 0 {
		w.failf("OK listing needs at least one auction")
		return
	}

	if status != StatusOK && len(states) > 0 {
		w.failf("%s listing must not carry auctions", status)
		return
	}

	for _, s := range states {
		w.aid(s.AID)
		w.state(s.Active)
	}
}

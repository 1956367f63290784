package protocol

import (
	"strconv"
	"time"
)

// Field bounds
const (
	UIDLen         = 6
	PasswordLen    = 8
	AIDLen         = 3
	MaxNameLen     = 10
	MaxFilenameLen = 24
	MaxValueLen    = 6
	MaxDurationLen = 5
	MaxSizeLen     = 8

	// MaxAssetSize bounds the binary segment of OPA and RSA.
	MaxAssetSize = 10 * 1024 * 1024

	// MaxBidsReported is how many of the most recent bids an RRC carries.
	MaxBidsReported = 50

	// DateTimeLayout is the layout of the two-token date-time fields in RRC.
	DateTimeLayout = "2006-01-02 15:04:05"
)

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlnum(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isFilenameChar(b byte) bool {
	return isAlnum(b) || b == '.' || b == '-' || b == '_'
}

func isDateChar(b byte) bool {
	return isDigit(b) || b == '-'
}

func isTimeChar(b byte) bool {
	return isDigit(b) || b == ':'
}

func isStatusChar(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func all(s string, class func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if !class(s[i]) {
			return false
		}
	}

	return true
}

func within(s string, min, max int, class func(byte) bool) bool {
	return len(s) >= min && len(s) <= max && all(s, class)
}

// ValidUID reports whether s is six digits and not all zero.
func ValidUID(s string) bool {
	return within(s, UIDLen, UIDLen, isDigit) && s != "000000"
}

func ValidPassword(s string) bool {
	return within(s, PasswordLen, PasswordLen, isAlnum)
}

func ValidAID(s string) bool {
	return within(s, AIDLen, AIDLen, isDigit)
}

func ValidName(s string) bool {
	return within(s, 1, MaxNameLen, isAlnum)
}

func ValidFilename(s string) bool {
	return within(s, 1, MaxFilenameLen, isFilenameChar)
}

// ValidValue reports whether v fits a monetary field.
func ValidValue(v int) bool {
	return v >= 0 && len(strconv.Itoa(v)) <= MaxValueLen
}

// ValidDuration reports whether v fits a time-active field.
func ValidDuration(v int) bool {
	return v > 0 && len(strconv.Itoa(v)) <= MaxDurationLen
}

func validSeconds(v int) bool {
	return v >= 0 && len(strconv.Itoa(v)) <= MaxDurationLen
}

func validAsset(b []byte) bool {
	return len(b) <= MaxAssetSize
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

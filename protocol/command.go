package protocol

// Code is the three character tag that starts every message.
type Code string

// Requests
const (
	LIN Code = "LIN"
	LOU Code = "LOU"
	UNR Code = "UNR"
	LMA Code = "LMA"
	LMB Code = "LMB"
	LST Code = "LST"
	SRC Code = "SRC"
	OPA Code = "OPA"
	CLS Code = "CLS"
	SAS Code = "SAS"
	BID Code = "BID"
)

// Responses
const (
	RLI Code = "RLI"
	RLO Code = "RLO"
	RUR Code = "RUR"
	RMA Code = "RMA"
	RMB Code = "RMB"
	RLS Code = "RLS"
	RRC Code = "RRC"
	ROA Code = "ROA"
	RCL Code = "RCL"
	RSA Code = "RSA"
	RBD Code = "RBD"
)

// ERR is the generic protocol error, valid in either direction.
const ERR Code = "ERR"

// CodeLen is the length of every type code.
const CodeLen = 3

type Status string

const (
	StatusOK  Status = "OK"
	StatusNOK Status = "NOK"
	StatusERR Status = "ERR"
	StatusREG Status = "REG"
	StatusUNR Status = "UNR"
	StatusNLG Status = "NLG"
	StatusEAU Status = "EAU"
	StatusEOW Status = "EOW"
	StatusEND Status = "END"
	StatusACC Status = "ACC"
	StatusREF Status = "REF"
	StatusILG Status = "ILG"
)

// The closed status set of each response type.
var (
	loginStatuses   = []Status{StatusOK, StatusNOK, StatusREG, StatusERR}
	logoutStatuses  = []Status{StatusOK, StatusNOK, StatusUNR, StatusERR}
	listStatuses    = []Status{StatusOK, StatusNOK, StatusNLG, StatusERR}
	listAllStatuses = []Status{StatusOK, StatusNOK, StatusERR}
	recordStatuses  = []Status{StatusOK, StatusNOK, StatusERR}
	openStatuses    = []Status{StatusOK, StatusNOK, StatusNLG, StatusERR}
	closeStatuses   = []Status{StatusOK, StatusNOK, StatusNLG, StatusEAU, StatusEOW, StatusEND, StatusERR}
	assetStatuses   = []Status{StatusOK, StatusNOK, StatusERR}
	bidStatuses     = []Status{StatusACC, StatusREF, StatusNLG, StatusILG, StatusNOK, StatusERR}
)

const maxStatusLen = 3

func statusIn(s Status, set []Status) bool {
	for _, allowed := range set {
		if s == allowed {
			return true
		}
	}

	return false
}

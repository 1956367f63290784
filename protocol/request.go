package protocol

// LoginRequest registers the user on first use, logs them in otherwise.
type LoginRequest struct {
	UID      string
	Password string
}

func (*LoginRequest) Code() Code { return LIN }

func (m *LoginRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
}

func (m *LoginRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.end()
}

type LogoutRequest struct {
	UID      string
	Password string
}

func (*LogoutRequest) Code() Code { return LOU }

func (m *LogoutRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
}

func (m *LogoutRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.end()
}

type UnregisterRequest struct {
	UID      string
	Password string
}

func (*UnregisterRequest) Code() Code { return UNR }

func (m *UnregisterRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
}

func (m *UnregisterRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.end()
}

// MyAuctionsRequest lists the auctions hosted by UID.
type MyAuctionsRequest struct {
	UID string
}

func (*MyAuctionsRequest) Code() Code { return LMA }

func (m *MyAuctionsRequest) encode(w *writer) {
	w.uid(m.UID)
}

func (m *MyAuctionsRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.end()
}

// MyBidsRequest lists the auctions UID has bid on.
type MyBidsRequest struct {
	UID string
}

func (*MyBidsRequest) Code() Code { return LMB }

func (m *MyBidsRequest) encode(w *writer) {
	w.uid(m.UID)
}

func (m *MyBidsRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.end()
}

type ListRequest struct{}

func (*ListRequest) Code() Code { return LST }

func (*ListRequest) encode(w *writer) {}

func (*ListRequest) decode(r *reader) {
	r.end()
}

type ShowRecordRequest struct {
	AID string
}

func (*ShowRecordRequest) Code() Code { return SRC }

func (m *ShowRecordRequest) encode(w *writer) {
	w.aid(m.AID)
}

func (m *ShowRecordRequest) decode(r *reader) {
	r.space()
	m.AID = r.aid()
	r.end()
}

// OpenRequest starts a new auction with an attached asset file.
type OpenRequest struct {
	UID        string
	Password   string
	Name       string
	StartValue int
	TimeActive int
	AssetName  string
	Asset      []byte
}

func (*OpenRequest) Code() Code { return OPA }

func (m *OpenRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
	w.name(m.Name)
	w.value(m.StartValue)
	w.duration(m.TimeActive)
	w.filename(m.AssetName)
	w.asset(m.Asset)
}

func (m *OpenRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.space()
	m.Name = r.name()
	r.space()
	m.StartValue = r.value()
	r.space()
	m.TimeActive = r.duration()
	r.space()
	m.AssetName = r.filename()
	r.space()
	m.Asset = r.asset()
	r.end()
}

type CloseRequest struct {
	UID      string
	Password string
	AID      string
}

func (*CloseRequest) Code() Code { return CLS }

func (m *CloseRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
	w.aid(m.AID)
}

func (m *CloseRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.space()
	m.AID = r.aid()
	r.end()
}

type ShowAssetRequest struct {
	AID string
}

func (*ShowAssetRequest) Code() Code { return SAS }

func (m *ShowAssetRequest) encode(w *writer) {
	w.aid(m.AID)
}

func (m *ShowAssetRequest) decode(r *reader) {
	r.space()
	m.AID = r.aid()
	r.end()
}

type BidRequest struct {
	UID      string
	Password string
	AID      string
	Value    int
}

func (*BidRequest) Code() Code { return BID }

func (m *BidRequest) encode(w *writer) {
	w.uid(m.UID)
	w.password(m.Password)
	w.aid(m.AID)
	w.value(m.Value)
}

func (m *BidRequest) decode(r *reader) {
	r.space()
	m.UID = r.uid()
	r.space()
	m.Password = r.password()
	r.space()
	m.AID = r.aid()
	r.space()
	m.Value = r.value()
	r.end()
}

// ErrorMessage is the bare "ERR" reply sent for unknown or unparseable
// requests.
type ErrorMessage struct{}

func (*ErrorMessage) Code() Code { return ERR }

func (*ErrorMessage) encode(w *writer) {}

func (*ErrorMessage) decode(r *reader) {
	r.end()
}

var _ Message = (*LoginRequest)(nil)
var _ Message = (*LogoutRequest)(nil)
var _ Message = (*UnregisterRequest)(nil)
var _ Message = (*MyAuctionsRequest)(nil)
var _ Message = (*MyBidsRequest)(nil)
var _ Message = (*ListRequest)(nil)
var _ Message = (*ShowRecordRequest)(nil)
var _ Message = (*OpenRequest)(nil)
var _ Message = (*CloseRequest)(nil)
var _ Message = (*ShowAssetRequest)(nil)
var _ Message = (*BidRequest)(nil)
var _ Message = (*ErrorMessage)(nil)

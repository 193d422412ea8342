package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
)

// CodeSuccess is the only envelope code that denotes success.
const CodeSuccess = 20000

// Re-authentication codes: illegal token, logged in elsewhere, token expired.
const (
	CodeIllegalToken  = 50008
	CodeOtherClient   = 50012
	CodeTokenExpired  = 50014
	statusTextSuccess = "OK"
)

var reauthCodes = map[int]struct{}{
	CodeIllegalToken: {},
	CodeOtherClient:  {},
	CodeTokenExpired: {},
}

// IsReauthCode reports whether code means the session must be re-established.
func IsReauthCode(code int) bool {
	_, ok := reauthCodes[code]
	return ok
}

var errMissingCode = errors.New("envelope has no code field")

// Envelope is the undecoded form of every backend reply. Fields other than
// code, message and data are kept verbatim in Extra.
//
// A decoded envelope marshals back to the exact bytes it was decoded from.
type Envelope struct {
	Code    int
	Message string
	Data    json.RawMessage
	Extra   map[string]json.RawMessage

	raw json.RawMessage
}

// OK reports whether the envelope carries the success code.
func (e Envelope) OK() bool {
	return e.Code == CodeSuccess
}

// UnmarshalJSON requires a JSON object with an integer code field. The code
// may also arrive as a numeric string.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errMissingCode
	}
	rawCode, ok := fields["code"]
	if !ok {
		return errMissingCode
	}
	var out Envelope
	code, err := decodeCode(rawCode)
	if err != nil {
		return fmt.Errorf("code: %w", err)
	}
	out.Code = code
	if msg, ok := fields["message"]; ok && !isNull(msg) {
		if err := json.Unmarshal(msg, &out.Message); err != nil {
			return fmt.Errorf("message: %w", err)
		}
	}
	if data, ok := fields["data"]; ok && !isNull(data) {
		out.Data = data
	}
	delete(fields, "code")
	delete(fields, "message")
	delete(fields, "data")
	if len(fields) > 0 {
		out.Extra = fields
	}
	out.raw = append(json.RawMessage(nil), b...)
	*e = out
	return nil
}

// MarshalJSON writes the envelope back in wire form, extras included.
// Decoded envelopes are written as received.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	fields := make(map[string]json.RawMessage, len(e.Extra)+3)
	for k, v := range e.Extra {
		fields[k] = v
	}
	code, err := json.Marshal(e.Code)
	if err != nil {
		return nil, err
	}
	fields["code"] = code
	if e.Message != "" {
		msg, err := json.Marshal(e.Message)
		if err != nil {
			return nil, err
		}
		fields["message"] = msg
	}
	if len(e.Data) > 0 {
		fields["data"] = e.Data
	}
	return json.Marshal(fields)
}

// decodeCode accepts 40004, 40004.0 and "40004".
func decodeCode(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %s", n)
	}
	return int(f), nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Response is an envelope whose data field has been decoded into T.
type Response[T any] struct {
	Code    int
	Message string
	Data    T
	Extra   map[string]json.RawMessage
}

// Reply is what the response stage hands back for a successful call.
//
// Body is the whole parsed envelope, not just its data field: callers see
// {code, message, data, ...} exactly as the backend sent it. Status and
// StatusText are normalized to 200/"OK"; Header and Config pass through from
// the original exchange.
type Reply struct {
	Status     int
	StatusText string
	Header     http.Header
	Config     Config
	Body       Envelope
}

func newReply(resp *http.Response, cfg Config, env Envelope) *Reply {
	return &Reply{
		Status:     http.StatusOK,
		StatusText: statusTextSuccess,
		Header:     resp.Header,
		Config:     cfg,
		Body:       env,
	}
}

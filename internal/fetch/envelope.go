package fetch

import (
	"bytes"
	"encoding/json"
)

// The webhooks do not agree on a top-level shape. Three are known:
// a bare array of rows, an array holding one {status, data} object,
// and an object with {success, data}. Anything else normalizes to an
// empty row set, never an error.
type envelopeShape int

const (
	shapeUnknown envelopeShape = iota
	shapeArray
	shapeStatusWrapped
	shapeSuccessWrapped
)

func (s envelopeShape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeStatusWrapped:
		return "status_wrapped"
	case shapeSuccessWrapped:
		return "success_wrapped"
	default:
		return "unknown"
	}
}

// envelope is the normalized view of a webhook response.
type envelope struct {
	Shape   envelopeShape
	Rows    json.RawMessage // always a JSON array when Shape != shapeUnknown
	Status  int
	Message string
}

type wrappedBody struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope normalizes a raw response body. Precedence follows
// the upstream contract: an array whose single element wraps data
// beats treating the array itself as rows.
func decodeEnvelope(raw []byte) envelope {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return envelope{Shape: shapeUnknown}
	}

	switch raw[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return envelope{Shape: shapeUnknown}
		}
		if len(arr) > 0 {
			if env, ok := decodeWrapped(arr[0]); ok {
				return env
			}
		}
		return envelope{Shape: shapeArray, Rows: raw}
	case '{':
		if env, ok := decodeWrapped(raw); ok {
			return env
		}
		return envelope{Shape: shapeUnknown}
	default:
		return envelope{Shape: shapeUnknown}
	}
}

// decodeWrapped recognizes {status,data} and {success,data} bodies
// whose data member is an array.
func decodeWrapped(raw json.RawMessage) (envelope, bool) {
	var w wrappedBody
	if err := json.Unmarshal(raw, &w); err != nil {
		return envelope{}, false
	}
	if len(w.Data) == 0 || bytes.TrimSpace(w.Data)[0] != '[' {
		return envelope{}, false
	}
	if w.Status == 200 {
		return envelope{Shape: shapeStatusWrapped, Rows: w.Data, Status: w.Status, Message: w.Message}, true
	}
	if w.Success {
		return envelope{Shape: shapeSuccessWrapped, Rows: w.Data, Message: w.Message}, true
	}
	if w.Status != 0 {
		// Wrapped but unsuccessful; report the status upward.
		return envelope{Shape: shapeStatusWrapped, Rows: []byte("[]"), Status: w.Status, Message: w.Message}, true
	}
	return envelope{}, false
}

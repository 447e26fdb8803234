package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Flex is a float64 that tolerates the loose typing of the upstream
// webhooks: values arrive as JSON numbers, quoted numbers, null or
// garbage strings. Anything unparseable decodes to 0, never NaN.
type Flex float64

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
		*f = Flex(parseFloat(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	*f = Flex(sanitize(v))
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the underlying value.
func (f Flex) Float64() float64 { return float64(f) }

// Int returns the value truncated toward zero.
func (f Flex) Int() int { return int(f) }

// FlexString is a string that also accepts JSON numbers and booleans,
// rendering them in their literal form. The ERP emits account_id both
// ways depending on export path.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(strings.TrimSpace(string(b)))
	return nil
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s FlexString) String() string { return string(s) }

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeDate reduces an ISO datetime (2025-06-20T17:00:00.000Z) to
// its YYYY-MM-DD date part. Plain dates pass through unchanged.
func NormalizeDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

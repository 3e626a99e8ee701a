package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampKind records which wire shape a Timestamp was decoded from.
type TimestampKind uint8

const (
	TimestampUnset    TimestampKind = iota
	TimestampTime                   // built from a time.Time
	TimestampString                 // RFC 3339 or YYYY-MM-DD string
	TimestampMillis                 // epoch milliseconds
	TimestampDocument               // {"seconds": n, "nanoseconds": n} object
)

// Timestamp is the single time representation used across stored documents.
// Documents may carry times as strings, epoch milliseconds, or a
// seconds/nanoseconds object; every shape decodes into this type and Time
// is the only conversion callers use for comparison or formatting.
type Timestamp struct {
	kind TimestampKind
	t    time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{kind: TimestampTime, t: t}
}

// FromMillis builds a Timestamp from epoch milliseconds.
func FromMillis(ms int64) Timestamp {
	return Timestamp{kind: TimestampMillis, t: time.UnixMilli(ms).UTC()}
}

// FromSeconds builds a Timestamp from epoch seconds plus a nanosecond offset.
func FromSeconds(sec, nanos int64) Timestamp {
	return Timestamp{kind: TimestampDocument, t: time.Unix(sec, nanos).UTC()}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an RFC 3339 timestamp, a zone-less date-time, or a
// bare YYYY-MM-DD date. Zone-less values are interpreted as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{kind: TimestampString, t: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// Time returns the normalized instant. The zero time.Time is returned when unset.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Kind reports which shape the Timestamp came from.
func (ts Timestamp) Kind() TimestampKind {
	return ts.kind
}

// IsZero reports whether the Timestamp is unset.
func (ts Timestamp) IsZero() bool {
	return ts.kind == TimestampUnset || ts.t.IsZero()
}

// MarshalJSON writes the instant as an RFC 3339 string in UTC, or null when unset.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, a string, a number of epoch milliseconds, or an
// object carrying seconds and nanoseconds (with or without a leading underscore).
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*ts = Timestamp{}
			return nil
		}
		parsed, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	case '{':
		var obj struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Seconds != nil:
			*ts = FromSeconds(*obj.Seconds, obj.Nanoseconds)
		case obj.USeconds != nil:
			*ts = FromSeconds(*obj.USeconds, obj.UNanoseconds)
		default:
			return fmt.Errorf("timestamp object missing seconds: %s", data)
		}
		return nil
	default:
		var ms float64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		*ts = FromMillis(int64(ms))
		return nil
	}
}

// StartOfDay floors t to 00:00:00 in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay ceils t to 23:59:59.999 in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// CivilDate returns t's calendar date (in t's own location) at UTC midnight,
// so dates from different zones compare by calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

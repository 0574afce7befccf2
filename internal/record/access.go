package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AccessTime is the moment a record was last opened.
// The zero value is Unset: never accessed, or explicitly reset.
type AccessTime struct {
	t time.Time
}

// Unset is the "no access recorded" sentinel.
var Unset AccessTime

var (
	_ json.Marshaler   = AccessTime{}
	_ json.Unmarshaler = (*AccessTime)(nil)
	_ fmt.Stringer     = AccessTime{}
)

// At returns a set AccessTime for t, truncated to millisecond resolution so
// values survive a round trip through either persistence backend unchanged.
func At(t time.Time) AccessTime {
	if t.IsZero() {
		return Unset
	}
	return AccessTime{t: time.UnixMilli(t.UnixMilli())}
}

// FromUnixMilli is the inverse of UnixMilli.
func FromUnixMilli(ms int64) AccessTime {
	return AccessTime{t: time.UnixMilli(ms)}
}

// IsSet reports whether an access has been recorded.
func (a AccessTime) IsSet() bool {
	return !a.t.IsZero()
}

// Time returns the recorded time, or the zero time when Unset.
func (a AccessTime) Time() time.Time {
	return a.t
}

// UnixMilli returns the recorded time in Unix milliseconds. Unset maps to
// epoch zero, which is how the calendar windows treat it.
func (a AccessTime) UnixMilli() int64 {
	if !a.IsSet() {
		return 0
	}
	return a.t.UnixMilli()
}

// Equal reports whether both values denote the same instant (or are both Unset).
func (a AccessTime) Equal(b AccessTime) bool {
	return a.Compare(b) == 0
}

// Compare orders Unset before every real time. Two Unset values are equal.
func (a AccessTime) Compare(b AccessTime) int {
	switch {
	case !a.IsSet() && !b.IsSet():
		return 0
	case !a.IsSet():
		return -1
	case !b.IsSet():
		return 1
	}
	return a.t.Compare(b.t)
}

// String returns "unset" or the RFC 3339 form in the value's location.
func (a AccessTime) String() string {
	if !a.IsSet() {
		return "unset"
	}
	return a.t.Format(time.RFC3339)
}

// MarshalJSON encodes Unset as null and set values as RFC 3339 UTC strings.
func (a AccessTime) MarshalJSON() ([]byte, error) {
	if !a.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(a.t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, 0 and "" as Unset (older data files used both
// 0 and the empty string), RFC 3339 strings and integer Unix milliseconds.
func (a *AccessTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Unset
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("record: invalid access time %s", data)
		}
		if s == "" {
			*a = Unset
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("record: invalid access time %q: %w", s, err)
		}
		*a = At(t)
		return nil
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("record: invalid access time %s", data)
	}
	if ms == 0 {
		*a = Unset
		return nil
	}
	*a = FromUnixMilli(ms)
	return nil
}

package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is a CheckMk service state. The numeric values are the wire codes.
type Status uint8

const (
	Ok       Status = 0
	Warning  Status = 1
	Critical Status = 2
	Unknown  Status = 3
)

// rank orders states by badness: Ok < Warning < Unknown < Critical.
func (s Status) rank() int {
	switch s {
	case Ok:
		return 0
	case Warning:
		return 1
	case Unknown:
		return 2
	default:
		return 3
	}
}

func (s Status) Worse(o Status) bool { return s.rank() > o.rank() }

func Worst(a, b Status) Status {
	if b.Worse(a) {
		return b
	}
	return a
}

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	case Unknown:
		return "unknown"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok", "0":
		return Ok, nil
	case "warning", "warn", "1":
		return Warning, nil
	case "critical", "crit", "2":
		return Critical, nil
	case "unknown", "3":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}

// MarshalJSON keeps the numeric code on the wire.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts either the numeric code or the state name.
func (s *Status) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n < int(Ok) || n > int(Unknown) {
			return fmt.Errorf("status code %d out of range", n)
		}
		*s = Status(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	v, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

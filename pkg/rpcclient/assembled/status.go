package assembled

import "fmt"

// Status is the lifecycle state of a Transaction.
type Status int

// Transaction states, they only ever move forward (Failed is reachable from
// any non-final state).
const (
	Built Status = iota
	Simulated
	Signed
	Submitted
	Polling
	Confirmed
	Failed
)

var statusNames = []string{"built", "simulated", "signed", "submitted", "polling", "confirmed", "failed"}

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Final denotes whether the transaction can't change anymore.
func (s Status) Final() bool {
	return s == Confirmed || s == Failed
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *Status) UnmarshalText(text []byte) error {
	for i, n := range statusNames {
		if n == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

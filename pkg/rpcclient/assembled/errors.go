package assembled

import (
	"errors"
	"fmt"
	"strings"
)

// Cause is the stage a transaction failed at.
type Cause int

// Failure causes.
const (
	CauseSimulation Cause = iota + 1
	CauseSigning
	CauseSubmission
	CauseExecution
	CauseTimeout
)

// Sentinel errors matching Error of the respective cause via errors.Is.
var (
	ErrSimulation = errors.New("simulation failed")
	ErrSigning    = errors.New("signing failed")
	ErrSubmission = errors.New("submission failed")
	ErrExecution  = errors.New("execution failed")
	ErrTimeout    = errors.New("transaction timed out")

	// ErrNoSignatureNeeded is returned when asked to sign a read-only call
	// without forcing it.
	ErrNoSignatureNeeded = errors.New("read-only call, no signature needed (force signing to submit it anyway)")
)

var causes = map[Cause]struct {
	name string
	err  error
}{
	CauseSimulation: {"simulation", ErrSimulation},
	CauseSigning:    {"signing", ErrSigning},
	CauseSubmission: {"submission", ErrSubmission},
	CauseExecution:  {"execution", ErrExecution},
	CauseTimeout:    {"timeout", ErrTimeout},
}

// String implements the fmt.Stringer interface.
func (c Cause) String() string {
	if d, ok := causes[c]; ok {
		return d.name
	}
	return fmt.Sprintf("Cause(%d)", int(c))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (c Cause) MarshalText() ([]byte, error) {
	if _, ok := causes[c]; !ok {
		return nil, fmt.Errorf("unknown cause %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (c *Cause) UnmarshalText(text []byte) error {
	for k, d := range causes {
		if d.name == string(text) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown cause %q", text)
}

// Error is a transaction failure. Diagnostic holds whatever the node returned
// to explain it (base64 XDR diagnostic events or transaction result).
type Error struct {
	Cause      Cause
	Diagnostic []string
	Err        error
}

func newError(c Cause, err error, diag ...string) *Error {
	return &Error{Cause: c, Err: err, Diagnostic: diag}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if d, ok := causes[e.Cause]; ok {
		sb.WriteString(d.err.Error())
	} else {
		sb.WriteString(e.Cause.String())
		sb.WriteString(" failed")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the cause.
func (e *Error) Is(target error) bool {
	d, ok := causes[e.Cause]
	return ok && target == d.err
}

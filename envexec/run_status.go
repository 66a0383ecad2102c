package envexec

import (
	"fmt"
)

// Status defines run task Status return status
type Status int

// Defines run task Status result status
const (
	// not initialized status (as error)
	StatusInvalid Status = iota

	// exit normally
	StatusAccepted
	StatusWrongAnswer

	// exit with error
	StatusTimeLimitExceeded   // TLE
	StatusOutputLimitExceeded // OLE
	StatusNonzeroExitStatus   // NZS
	StatusSignalled           // SIG

	// killed because the caller gave up
	StatusCancelled

	// internal error including: program not found, pipe failure, etc
	StatusInternalError
)

var statusToString = []string{
	"Invalid",
	"Accepted",
	"Wrong Answer",
	"Time Limit Exceeded",
	"Output Limit Exceeded",
	"Nonzero Exit Status",
	"Signalled",
	"Cancelled",
	"Internal Error",
}

// stringToStatus map string to corresponding Status
var stringToStatus = make(map[string]Status)

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0] // invalid
	}
	return statusToString[si]
}

// StringToStatus convert string to Status
func StringToStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid string converting: %s", s)
	}
	return v, nil
}

func init() {
	for i, v := range statusToString {
		stringToStatus[v] = Status(i)
	}
}

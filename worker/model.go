package worker

import (
	"time"

	"github.com/codeprep/go-runner/types"
)

// Response defines the outcome of a single request
type Response struct {
	RequestID string
	Language  string
	Result    *types.Result
	Error     error // set when the request could not be judged
	Duration  time.Duration
}

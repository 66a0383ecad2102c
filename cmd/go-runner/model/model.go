// Package model defines the JSON wire format of the execution API
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/types"
	"github.com/codeprep/go-runner/worker"
)

// InternalError replaces the detail of failures the client cannot act on
const InternalError = "internal error"

var errEmptyLanguage = errors.New("language is required")

// ErrorMessage returns the error text returned to clients
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, language.ErrUnsupportedLanguage), errors.Is(err, worker.ErrShutdown):
		return err.Error()
	default:
		return InternalError
	}
}

// Text accepts any JSON scalar. Non-string values keep their JSON text.
type Text string

// UnmarshalJSON converts string / number / bool / null into text
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// TestCase defines single input / expected output pair
type TestCase struct {
	Input  Text `json:"input"`
	Output Text `json:"output"`
}

// Request defines single execution request
type Request struct {
	RequestID string     `json:"requestId,omitempty"`
	Code      string     `json:"code"`
	Language  string     `json:"language"`
	TestCases []TestCase `json:"test_cases"`
}

// Status offers JSON marshal for envexec.Status
type Status envexec.Status

// String converts status to string
func (s Status) String() string {
	return envexec.Status(s).String()
}

// MarshalJSON convert status into string
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte("\"" + envexec.Status(s).String() + "\""), nil
}

// UnmarshalJSON convert string into status
func (s *Status) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) < 2 {
		return fmt.Errorf("invalid status: %s", str)
	}
	v, err := envexec.StringToStatus(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	*s = Status(v)
	return nil
}

// Result defines single test case verdict
type Result struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
	Status   Status `json:"status"`
	Time     uint64 `json:"time"`
}

// Response defines the response of an execution request
type Response struct {
	RequestID    string   `json:"requestId,omitempty"`
	CompileError string   `json:"compile_error,omitempty"`
	Results      []Result `json:"results"`
	Error        string   `json:"error,omitempty"`
}

// ConvertRequest converts json request into the internal request, code
// larger than maxCodeSize (when positive) is rejected
func ConvertRequest(r *Request, maxCodeSize envexec.Size) (*types.Request, error) {
	if r.Language == "" {
		return nil, errEmptyLanguage
	}
	if maxCodeSize > 0 && len(r.Code) > int(maxCodeSize) {
		return nil, fmt.Errorf("code size %d exceeds limit %v", len(r.Code), maxCodeSize)
	}
	req := &types.Request{
		RequestID: r.RequestID,
		Code:      r.Code,
		Language:  r.Language,
		TestCases: make([]types.TestCase, 0, len(r.TestCases)),
	}
	for _, tc := range r.TestCases {
		req.TestCases = append(req.TestCases, types.TestCase{
			Input:          string(tc.Input),
			ExpectedOutput: string(tc.Output),
		})
	}
	return req, nil
}

// ConvertResponse converts a worker response into json response
func ConvertResponse(rt worker.Response) Response {
	ret := Response{
		RequestID: rt.RequestID,
		Results:   []Result{},
	}
	ret.Error = ErrorMessage(rt.Error)
	if rt.Result == nil {
		return ret
	}
	ret.CompileError = rt.Result.CompileError
	ret.Results = make([]Result, 0, len(rt.Result.Results))
	for _, r := range rt.Result.Results {
		ret.Results = append(ret.Results, convertResult(r))
	}
	return ret
}

func convertResult(r types.CaseResult) Result {
	return Result{
		Input:    r.Input,
		Expected: r.Expected,
		Actual:   r.Actual,
		Passed:   r.Passed,
		Error:    r.Error,
		Status:   Status(r.Status),
		Time:     uint64(r.Time),
	}
}

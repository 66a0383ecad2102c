//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// const serverURL = "http://192.168.3.30:5050/execute-code"
const serverURL = "http://localhost:5050/execute-code"

type TestCase struct {
	Input  any `json:"input"`
	Output any `json:"output"`
}

type Request struct {
	RequestID string     `json:"requestId,omitempty"`
	Code      string     `json:"code"`
	Language  string     `json:"language"`
	TestCases []TestCase `json:"test_cases"`
}

type Result struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error"`
	Status   string `json:"status"`
}

type Response struct {
	RequestID    string   `json:"requestId"`
	CompileError string   `json:"compile_error"`
	Results      []Result `json:"results"`
	Error        string   `json:"error"`
}

var client = &http.Client{Timeout: 60 * time.Second}

func execute(req Request) (int, *Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Post(serverURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode %s: %w", body, err)
	}
	return resp.StatusCode, &r, nil
}

// Package types defines the execution request and its result
package types

// Request is a single code execution request, never mutated after creation
type Request struct {
	RequestID string
	Code      string
	Language  string
	TestCases []TestCase
}

// TestCase defines one input fed to stdin and the answer expected on stdout
type TestCase struct {
	Input          string
	ExpectedOutput string
}

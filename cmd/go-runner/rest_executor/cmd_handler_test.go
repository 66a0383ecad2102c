package restexecutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeprep/go-runner/cmd/go-runner/model"
	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/types"
	"github.com/codeprep/go-runner/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

// mockWorker is a mock implementation of the worker.Worker interface
type mockWorker struct {
	// The result and error to send back when Submit is called
	Result *types.Result
	Error  error

	// last submitted request
	Request *types.Request
	worker.Worker
}

func (m *mockWorker) Submit(_ context.Context, req *types.Request) <-chan worker.Response {
	m.Request = req
	rtCh := make(chan worker.Response, 1)
	rtCh <- worker.Response{
		RequestID: req.RequestID,
		Result:    m.Result,
		Error:     m.Error,
	}
	return rtCh
}

// requestToReader converts a model.Request to an io.Reader
func requestToReader(req model.Request) io.Reader {
	data, err := json.Marshal(req)
	if err != nil {
		return nil
	}
	return bytes.NewReader(data)
}

func serve(t *testing.T, w worker.Worker, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewCmdHandle(w, []string{"cpp", "java", "python3"}, 1<<10, zaptest.NewLogger(t)).Register(router)

	testReq := httptest.NewRequest(http.MethodPost, "/execute-code", body)
	testReq.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, testReq)
	return recorder
}

func TestHandleExecute(t *testing.T) {
	mockWorker := &mockWorker{
		Result: &types.Result{Results: []types.CaseResult{
			{Input: "2", Expected: "4", Actual: "4", Passed: true, Status: envexec.StatusAccepted, Time: 30 * time.Millisecond},
			{Input: "3", Expected: "7", Actual: "6", Status: envexec.StatusWrongAnswer},
		}},
	}
	recorder := serve(t, mockWorker, requestToReader(model.Request{
		Code:     "print(int(input())*2)",
		Language: "python3",
		TestCases: []model.TestCase{
			{Input: "2", Output: "4"},
			{Input: "3", Output: "7"},
		},
	}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body)
	}
	if mockWorker.Request.RequestID == "" {
		t.Error("expected generated request id")
	}
	if len(mockWorker.Request.TestCases) != 2 || mockWorker.Request.TestCases[1].ExpectedOutput != "7" {
		t.Errorf("unexpected submitted request %+v", mockWorker.Request)
	}

	var response model.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.RequestID != mockWorker.Request.RequestID {
		t.Errorf("request id not echoed: %q", response.RequestID)
	}
	if len(response.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(response.Results))
	}
	if r := response.Results[0]; !r.Passed || r.Actual != "4" || r.Status.String() != "Accepted" || r.Time != uint64(30*time.Millisecond) {
		t.Errorf("unexpected result %+v", r)
	}
	if r := response.Results[1]; r.Passed || r.Status.String() != "Wrong Answer" {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestHandleExecuteCompileError(t *testing.T) {
	mockWorker := &mockWorker{
		Result: &types.Result{CompileError: "solution.cpp:1: error", Results: []types.CaseResult{}},
	}
	recorder := serve(t, mockWorker, requestToReader(model.Request{
		RequestID: "qwq",
		Code:      "int main() { return }",
		Language:  "cpp",
		TestCases: []model.TestCase{{Input: "1", Output: "1"}},
	}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var raw map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["compile_error"] != "solution.cpp:1: error" || raw["requestId"] != "qwq" {
		t.Errorf("unexpected body %v", raw)
	}
	if results, ok := raw["results"].([]any); !ok || len(results) != 0 {
		t.Errorf("expected empty results, got %v", raw["results"])
	}
}

func TestHandleExecuteUnsupportedLanguage(t *testing.T) {
	mockWorker := &mockWorker{
		Error: &language.UnsupportedLanguageError{Language: "ruby", Supported: []string{"cpp", "java", "python3"}},
	}
	recorder := serve(t, mockWorker, requestToReader(model.Request{Code: "puts 1", Language: "ruby"}))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	var body struct {
		Error     string   `json:"error"`
		Supported []string `json:"supported"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == "" || len(body.Supported) != 3 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestHandleExecuteInternalError(t *testing.T) {
	mockWorker := &mockWorker{Error: errors.New("workspace: acquire: disk full")}
	recorder := serve(t, mockWorker, requestToReader(model.Request{Code: "x", Language: "python3"}))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	if bytes.Contains(recorder.Body.Bytes(), []byte("disk full")) {
		t.Errorf("internal detail leaked: %s", recorder.Body)
	}
}

func TestHandleExecuteShutdown(t *testing.T) {
	mockWorker := &mockWorker{Error: worker.ErrShutdown}
	recorder := serve(t, mockWorker, requestToReader(model.Request{Code: "x", Language: "python3"}))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status %d, got %d", http.StatusServiceUnavailable, recorder.Code)
	}
}

func TestHandleExecuteBadRequest(t *testing.T) {
	for name, body := range map[string]string{
		"invalid json":   `{"code":`,
		"no language":    `{"code":"x","test_cases":[]}`,
		"code too large": `{"code":"` + string(bytes.Repeat([]byte("a"), 2048)) + `","language":"cpp"}`,
	} {
		t.Run(name, func(t *testing.T) {
			mockWorker := &mockWorker{}
			recorder := serve(t, mockWorker, bytes.NewReader([]byte(body)))
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, recorder.Code)
			}
			if mockWorker.Request != nil {
				t.Error("bad request should not be submitted")
			}
		})
	}
}

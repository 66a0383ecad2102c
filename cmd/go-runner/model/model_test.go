package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/types"
	"github.com/codeprep/go-runner/worker"
)

func TestStatus_MarshalUnmarshalJSON(t *testing.T) {
	type wrap struct {
		Status Status `json:"status"`
	}
	orig := wrap{Status: Status(envexec.StatusTimeLimitExceeded)}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `{"status":"Time Limit Exceeded"}` {
		t.Fatalf("unexpected json %s", data)
	}
	var got wrap
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.Status != orig.Status {
		t.Errorf("got %v, want %v", got.Status, orig.Status)
	}
}

func TestStatus_UnmarshalJSON_Invalid(t *testing.T) {
	var s Status
	if err := s.UnmarshalJSON([]byte(`"not_a_status"`)); err == nil {
		t.Error("expected error for invalid status string")
	}
}

func TestRequest_UnmarshalScalars(t *testing.T) {
	body := `{
		"code": "print(int(input())*2)",
		"language": "python3",
		"test_cases": [
			{"input": "2", "output": "4"},
			{"input": 3, "output": 6},
			{"input": true, "output": null},
			{"input": [1, 2], "output": "x"}
		]
	}`
	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	want := []TestCase{{"2", "4"}, {"3", "6"}, {"true", ""}, {"[1,2]", "x"}}
	if len(req.TestCases) != len(want) {
		t.Fatalf("expected %d cases, got %d", len(want), len(req.TestCases))
	}
	for i, tc := range want {
		if req.TestCases[i] != tc {
			t.Errorf("case %d: got %+v, want %+v", i, req.TestCases[i], tc)
		}
	}
}

func TestConvertRequest(t *testing.T) {
	r, err := ConvertRequest(&Request{
		RequestID: "id",
		Code:      "code",
		Language:  "cpp",
		TestCases: []TestCase{{Input: "1 2", Output: "3"}},
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.RequestID != "id" || r.Language != "cpp" || len(r.TestCases) != 1 || r.TestCases[0].ExpectedOutput != "3" {
		t.Errorf("unexpected request %+v", r)
	}

	if _, err := ConvertRequest(&Request{Code: "x"}, 0); !errors.Is(err, errEmptyLanguage) {
		t.Errorf("expected empty language error, got %v", err)
	}
	if _, err := ConvertRequest(&Request{Code: "too long", Language: "cpp"}, 4); err == nil {
		t.Error("expected code size error")
	}
}

func TestConvertResponse(t *testing.T) {
	compileErr := ConvertResponse(worker.Response{
		RequestID: "a",
		Result:    &types.Result{CompileError: "error: expected", Results: []types.CaseResult{}},
	})
	data, err := json.Marshal(compileErr)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"requestId":"a","compile_error":"error: expected","results":[]}` {
		t.Errorf("unexpected compile error json %s", data)
	}

	ok := ConvertResponse(worker.Response{
		Result: &types.Result{Results: []types.CaseResult{{
			Input:    "2",
			Expected: "4",
			Actual:   "4",
			Passed:   true,
			Status:   envexec.StatusAccepted,
			Time:     time.Millisecond,
		}}},
	})
	data, err = json.Marshal(ok)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"results":[{"input":"2","expected":"4","actual":"4","passed":true,"status":"Accepted","time":1000000}]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	failed := ConvertResponse(worker.Response{Error: errors.New("judge: workspace: acquire: boom")})
	if failed.Error != InternalError || failed.Results == nil {
		t.Errorf("unexpected error response %+v", failed)
	}

	unsupported := ConvertResponse(worker.Response{Error: &language.UnsupportedLanguageError{Language: "ruby"}})
	if unsupported.Error != (&language.UnsupportedLanguageError{Language: "ruby"}).Error() {
		t.Errorf("unsupported language should keep its message, got %+v", unsupported)
	}

	shutdown := ConvertResponse(worker.Response{Error: worker.ErrShutdown})
	if shutdown.Error != worker.ErrShutdown.Error() {
		t.Errorf("unexpected shutdown response %+v", shutdown)
	}
}

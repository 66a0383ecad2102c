package wsexecutor

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codeprep/go-runner/cmd/go-runner/model"
	"github.com/codeprep/go-runner/types"
	"github.com/codeprep/go-runner/worker"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

// echoWorker passes every input through as the actual output
type echoWorker struct {
	worker.Worker
}

func (echoWorker) Submit(_ context.Context, req *types.Request) <-chan worker.Response {
	ch := make(chan worker.Response, 1)
	res := &types.Result{}
	for _, tc := range req.TestCases {
		res.Results = append(res.Results, types.CaseResult{
			Input:    tc.Input,
			Expected: tc.ExpectedOutput,
			Actual:   tc.Input,
			Passed:   tc.Input == tc.ExpectedOutput,
		})
	}
	ch <- worker.Response{RequestID: req.RequestID, Result: res}
	return ch
}

// failingWorker fails every request with err
type failingWorker struct {
	worker.Worker
	err error
}

func (f failingWorker) Submit(_ context.Context, req *types.Request) <-chan worker.Response {
	ch := make(chan worker.Response, 1)
	ch <- worker.Response{RequestID: req.RequestID, Error: f.err}
	return ch
}

func dial(t *testing.T, w worker.Worker) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(w, 0, zaptest.NewLogger(t)).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketInternalError(t *testing.T) {
	conn := dial(t, failingWorker{err: errors.New("judge: workspace: acquire: disk full")})

	if err := conn.WriteJSON(model.Request{RequestID: "ws-1", Code: "x", Language: "python3"}); err != nil {
		t.Fatal(err)
	}
	var resp model.Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID != "ws-1" || resp.Error != model.InternalError {
		t.Fatalf("expected generic internal error, got %+v", resp)
	}
}

func TestWebSocketExecute(t *testing.T) {
	conn := dial(t, echoWorker{})

	if err := conn.WriteJSON(model.Request{
		RequestID: "ws-1",
		Code:      "print(input())",
		Language:  "python3",
		TestCases: []model.TestCase{{Input: "a", Output: "a"}, {Input: "b", Output: "c"}},
	}); err != nil {
		t.Fatal(err)
	}
	var resp model.Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID != "ws-1" || len(resp.Results) != 2 || !resp.Results[0].Passed || resp.Results[1].Passed {
		t.Fatalf("unexpected response %+v", resp)
	}

	// invalid request is answered with an error, the connection stays open
	if err := conn.WriteJSON(model.Request{RequestID: "ws-2", Code: "x"}); err != nil {
		t.Fatal(err)
	}
	resp = model.Response{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID != "ws-2" || resp.Error == "" {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

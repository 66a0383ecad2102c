// Package worker bounds the number of requests judged at the same time
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/codeprep/go-runner/types"
)

const maxWaiting = 512

// ErrShutdown is returned for requests submitted after Shutdown
var ErrShutdown = errors.New("worker: shut down")

// Judger runs a single request to completion
type Judger interface {
	Judge(context.Context, *types.Request) (*types.Result, error)
}

// Config defines worker configuration
type Config struct {
	Judger       Judger
	Parallelism  int
	ExecObserver func(Response)
}

// Worker defines interface for executor
type Worker interface {
	Start()
	Submit(context.Context, *types.Request) <-chan Response
	Shutdown()
}

// worker defines executor worker
type worker struct {
	judger      Judger
	parallelism int

	execObserver func(Response)

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	workCh    chan workRequest
	done      chan struct{}

	// mu guards closed, no request is queued once Shutdown holds it
	mu     sync.RWMutex
	closed bool

	// baseCtx is cancelled by Shutdown to abort requests in flight
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

type workRequest struct {
	*types.Request
	context.Context
	resultCh chan<- Response
}

// New creates new worker
func New(conf Config) Worker {
	parallelism := conf.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &worker{
		judger:       conf.Judger,
		parallelism:  parallelism,
		execObserver: conf.ExecObserver,
		workCh:       make(chan workRequest, maxWaiting),
		done:         make(chan struct{}),
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
	}
}

// Start starts worker loops with given parallelism
func (w *worker) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(w.parallelism)
		for i := 0; i < w.parallelism; i++ {
			go w.loop()
		}
	})
}

// Submit submits a single request. The returned channel always receives exactly one response,
// with ctx's error if the caller gave up before the request was picked up.
func (w *worker) Submit(ctx context.Context, req *types.Request) <-chan Response {
	ch := make(chan Response, 1)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		ch <- w.errResponse(req, ErrShutdown)
		return ch
	}
	wr := workRequest{
		Request:  req,
		Context:  ctx,
		resultCh: ch,
	}
	select {
	case w.workCh <- wr:
	case <-ctx.Done():
		ch <- w.errResponse(req, ctx.Err())
	case <-w.done:
		ch <- w.errResponse(req, ErrShutdown)
	}
	return ch
}

// Shutdown stops accepting new requests, cancels the requests in flight
// and waits all worker to finish
func (w *worker) Shutdown() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.baseCancel()

		// wait for pending Submit to return
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()

		w.wg.Wait()
		// fail whatever is still queued
		for {
			select {
			case req := <-w.workCh:
				req.resultCh <- w.errResponse(req.Request, ErrShutdown)
			default:
				return
			}
		}
	})
}

func (w *worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.workCh:
			w.workDo(req)
		case <-w.done:
			return
		}
	}
}

func (w *worker) workDo(req workRequest) {
	if w.baseCtx.Err() != nil {
		req.resultCh <- w.errResponse(req.Request, ErrShutdown)
		return
	}
	// the caller gave up while queued
	if err := req.Context.Err(); err != nil {
		req.resultCh <- w.errResponse(req.Request, err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context)
	defer cancel()
	stop := context.AfterFunc(w.baseCtx, cancel)
	defer stop()

	start := time.Now()
	result, err := w.judger.Judge(ctx, req.Request)
	if err != nil && w.baseCtx.Err() != nil && req.Context.Err() == nil {
		err = ErrShutdown
	}
	rt := Response{
		RequestID: req.RequestID,
		Language:  req.Language,
		Result:    result,
		Error:     err,
		Duration:  time.Since(start),
	}
	if w.execObserver != nil {
		w.execObserver(rt)
	}
	req.resultCh <- rt
}

func (w *worker) errResponse(req *types.Request, err error) Response {
	return Response{
		RequestID: req.RequestID,
		Language:  req.Language,
		Error:     err,
	}
}

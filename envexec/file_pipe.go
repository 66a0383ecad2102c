package envexec

import (
	"bytes"
	"io"
	"os"
	"time"
)

// pipeBuffer collects one output stream of the program up to Limit bytes
type pipeBuffer struct {
	R      *os.File
	W      *os.File
	Buffer *bytes.Buffer
	Done   <-chan struct{}
	Limit  Size
}

// newPipeBuffer creates a pipe whose read end is copied into a buffer.
// exceeded is called once when more than limit bytes were written.
func newPipeBuffer(limit Size, exceeded func()) (*pipeBuffer, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	buffer := new(bytes.Buffer)
	done := make(chan struct{})
	go func() {
		n, _ := io.CopyN(buffer, r, int64(limit)+1)
		if n > int64(limit) && exceeded != nil {
			exceeded()
		}
		close(done)
		// ensure no blocking / SIGPIPE on the other end
		io.Copy(io.Discard, r)
		r.Close()
	}()
	return &pipeBuffer{
		R:      r,
		W:      w,
		Buffer: buffer,
		Done:   done,
		Limit:  limit,
	}, nil
}

// wait waits the writers to close the pipe, or forces the read end closed after d
func (p *pipeBuffer) wait(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-p.Done:
		return
	case <-timer.C:
	}
	p.R.Close()
	<-p.Done
}

// Exceeded reports whether the program wrote more than the limit
func (p *pipeBuffer) Exceeded() bool {
	return int64(p.Buffer.Len()) > int64(p.Limit)
}

// Bytes returns collected content, truncated to the limit
func (p *pipeBuffer) Bytes() []byte {
	b := p.Buffer.Bytes()
	if p.Exceeded() {
		b = b[:p.Limit]
	}
	return b
}

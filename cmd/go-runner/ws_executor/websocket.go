package wsexecutor

import (
	"context"
	"net/http"
	"time"

	"github.com/codeprep/go-runner/cmd/go-runner/model"
	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/worker"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws
type Register interface {
	Register(*gin.Engine)
}

// New creates new websocket handle
func New(worker worker.Worker, maxCodeSize envexec.Size, logger *zap.Logger) Register {
	return &wsHandle{
		worker:      worker,
		maxCodeSize: maxCodeSize,
		logger:      logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	worker      worker.Worker
	maxCodeSize envexec.Size
	logger      *zap.Logger
}

func (h *wsHandle) Register(r *gin.Engine) {
	r.GET("/ws", h.handleWS)
}

func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}
	resultCh := make(chan model.Response, 128)

	// requests in flight are cancelled once the connection is gone
	ctx, cancel := context.WithCancel(context.Background())

	// read request
	go func() {
		defer cancel()
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			req := new(model.Request)
			if err := conn.ReadJSON(req); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn("ws read error", zap.Error(err))
				}
				return
			}
			if req.RequestID == "" {
				req.RequestID = uuid.NewString()
			}
			r, err := model.ConvertRequest(req, h.maxCodeSize)
			if err != nil {
				h.send(ctx, resultCh, model.Response{
					RequestID: req.RequestID,
					Results:   []model.Result{},
					Error:     err.Error(),
				})
				continue
			}
			go func() {
				ret := <-h.worker.Submit(ctx, r)
				if ret.Error != nil && ctx.Err() == nil {
					if model.ErrorMessage(ret.Error) == model.InternalError {
						h.logger.Error("ws execute failed", zap.String("requestId", r.RequestID), zap.Error(ret.Error))
					} else {
						h.logger.Debug("ws execute rejected", zap.String("requestId", r.RequestID), zap.Error(ret.Error))
					}
				}
				h.send(ctx, resultCh, model.ConvertResponse(ret))
			}()
		}
	}()

	// write result
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-resultCh:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(r); err != nil {
					h.logger.Warn("ws write error", zap.Error(err))
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

func (h *wsHandle) send(ctx context.Context, ch chan<- model.Response, r model.Response) {
	select {
	case ch <- r:
	case <-ctx.Done():
	}
}

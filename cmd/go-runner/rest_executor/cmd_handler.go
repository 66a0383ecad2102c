package restexecutor

import (
	"context"
	"errors"
	"net/http"

	"github.com/codeprep/go-runner/cmd/go-runner/model"
	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/worker"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cmdHandle struct {
	worker      worker.Worker
	languages   []string
	maxCodeSize envexec.Size
	logger      *zap.Logger
}

// NewCmdHandle creates a new execution handle
func NewCmdHandle(worker worker.Worker, languages []string, maxCodeSize envexec.Size, logger *zap.Logger) Register {
	return &cmdHandle{
		worker:      worker,
		languages:   languages,
		maxCodeSize: maxCodeSize,
		logger:      logger,
	}
}

func (c *cmdHandle) Register(r *gin.Engine) {
	r.POST("/execute-code", c.handleExecute)
}

func (c *cmdHandle) handleExecute(ctx *gin.Context) {
	var req model.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := model.ConvertRequest(&req, c.maxCodeSize)
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	c.logger.Debug("request", zap.String("requestId", r.RequestID), zap.String("language", r.Language), zap.Int("cases", len(r.TestCases)))

	rt := <-c.worker.Submit(ctx.Request.Context(), r)
	if rt.Error != nil {
		c.handleError(ctx, r.RequestID, rt.Error)
		return
	}
	ctx.JSON(http.StatusOK, model.ConvertResponse(rt))
}

func (c *cmdHandle) handleError(ctx *gin.Context, requestID string, err error) {
	ctx.Error(err)
	var ule *language.UnsupportedLanguageError
	switch {
	case errors.As(err, &ule):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"requestId": requestID,
			"error":     err.Error(),
			"supported": c.languages,
		})
	case errors.Is(err, worker.ErrShutdown):
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"requestId": requestID,
			"error":     err.Error(),
		})
	case errors.Is(err, context.Canceled) && ctx.Request.Context().Err() != nil:
		// client has gone, nothing to reply
		c.logger.Debug("request cancelled", zap.String("requestId", requestID))
		ctx.Abort()
	default:
		c.logger.Error("execute failed", zap.String("requestId", requestID), zap.Error(err))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"requestId": requestID,
			"error":     model.InternalError,
		})
	}
}

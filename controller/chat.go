// Package controller holds the gateway's HTTP handlers. Each handler binds
// the inbound gin.Context to a core operation (dispatch, repository, probe,
// discovery) and translates its result to the wire shapes in spec.md §6.
package controller

import (
	"net/http"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/dispatch"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

// Repo is the ModelRepository every controller in this package reads and
// writes through. Set once at startup by router.New.
var Repo model.ModelRepository

// Engine is the dispatch engine chat handlers call into. Set once at
// startup alongside Repo.
var Engine *dispatch.Engine

// requestValidator enforces rmodel.StandardRequest's `validate` struct
// tags (messages non-empty, every message.role in the allowed set) before
// any candidate is attempted (spec.md §4.2, §7 KindValidationError).
var requestValidator = validator.New()

// ChatCompletions serves `POST /v1/chat/completions` (spec.md §6): it binds
// the OpenAI-compatible request body, validates it, and routes to the
// dispatch engine's unary or streaming path depending on `stream`.
func ChatCompletions(c *gin.Context) {
	var req rmodel.StandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeDispatchError(c, rmodel.NewDispatchError(rmodel.KindValidationError, "invalid request body", err))
		return
	}
	if err := requestValidator.Struct(&req); err != nil {
		writeDispatchError(c, rmodel.NewDispatchError(rmodel.KindValidationError, "request failed validation", err))
		return
	}

	if req.Stream {
		serveStream(c, &req)
		return
	}
	serveUnary(c, &req)
}

func serveUnary(c *gin.Context, req *rmodel.StandardRequest) {
	resp, err := Engine.Dispatch(c.Request.Context(), req)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func serveStream(c *gin.Context, req *rmodel.StandardRequest) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Status(http.StatusOK)
	flusher, canFlush := c.Writer.(http.Flusher)

	err := Engine.DispatchStream(c.Request.Context(), req, &flushWriter{w: c.Writer, f: flusher, canFlush: canFlush})
	if err != nil {
		logger.Logger.Warn("stream dispatch failed", zap.Error(err))
	}
}

// flushWriter flushes the underlying ResponseWriter after every write so
// SSE frames reach the caller as they're produced, not buffered until the
// handler returns.
type flushWriter struct {
	w        http.ResponseWriter
	f        http.Flusher
	canFlush bool
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err == nil && fw.canFlush {
		fw.f.Flush()
	}
	return n, err
}

func writeDispatchError(c *gin.Context, err error) {
	de, ok := rmodel.AsDispatchError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error(), "type": "internal_error"}})
		return
	}
	c.JSON(de.StatusCode(), gin.H{"error": gin.H{"message": de.Error(), "type": string(de.Kind)}})
}

// Package dispatch implements the candidate-selection and failover loop
// that turns one inbound StandardRequest into an upstream call against a
// prioritized list of ModelRecords (spec.md §4.2).
package dispatch

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/jinzhu/copier"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/monitor"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
	"github.com/Chyrain/LLMGateway/relay/quota"
	"github.com/Chyrain/LLMGateway/relay/streaming"
	"github.com/Chyrain/LLMGateway/relay/upstream"
)

// autoModelNames are the request model values that select the full ordered
// candidate list instead of partitioning by name (spec.md §4.2 rule 2).
var autoModelNames = map[string]bool{"": true, "auto": true, "Auto": true, "AUTO": true}

// Engine dispatches StandardRequests against the configured ModelRecords,
// in priority order, with failover across upstream and validation errors.
type Engine struct {
	Repo model.ModelRepository
}

// New builds an Engine over repo.
func New(repo model.ModelRepository) *Engine {
	return &Engine{Repo: repo}
}

// candidates returns the ordered list of ModelRecords to attempt for a
// given requested model name (spec.md §4.2 rules 1-4).
func (e *Engine) candidates(ctx context.Context, requestedModel string) ([]model.ModelRecord, error) {
	all, err := e.Repo.ListCandidates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list dispatch candidates")
	}

	if autoModelNames[requestedModel] {
		return all, nil
	}

	var matching, rest []model.ModelRecord
	for _, m := range all {
		if m.ModelName == requestedModel {
			matching = append(matching, m)
		} else {
			rest = append(rest, m)
		}
	}
	return append(matching, rest...), nil
}

// Dispatch executes the unary path: it attempts candidates in order until
// one succeeds, or returns a KindAllUpstreamsFailed/KindNoAvailableModel
// DispatchError (spec.md §4.2).
func (e *Engine) Dispatch(ctx context.Context, req *rmodel.StandardRequest) (*rmodel.StandardResponse, error) {
	list, err := e.candidates(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		monitor.DispatchRequests.WithLabelValues(string(rmodel.KindNoAvailableModel)).Inc()
		return nil, rmodel.NewDispatchError(rmodel.KindNoAvailableModel, "no eligible model configured", nil)
	}

	var lastErr error
	for _, m := range list {
		resp, attemptErr := e.attemptUnary(ctx, req, m)
		if attemptErr == nil {
			monitor.DispatchRequests.WithLabelValues("success").Inc()
			return resp, nil
		}
		lastErr = attemptErr
	}

	monitor.DispatchRequests.WithLabelValues(string(rmodel.KindAllUpstreamsFailed)).Inc()
	return nil, rmodel.NewDispatchError(rmodel.KindAllUpstreamsFailed, "all candidates failed", lastErr)
}

// attemptUnary performs one candidate's unary upstream call and records the
// attempt's OperationLog row.
func (e *Engine) attemptUnary(ctx context.Context, req *rmodel.StandardRequest, m model.ModelRecord) (*rmodel.StandardResponse, error) {
	content := model.AttemptLogContent{RequestedModel: req.Model, AttemptedModel: m.ModelName}

	a, ok := adaptor.Resolve(m.Vendor, m.ApiSpec)
	if !ok {
		content.Status = string(rmodel.KindTransportError)
		content.Error = "no adapter registered for vendor/spec"
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindTransportError, "no adapter registered for "+m.Vendor, nil)
	}

	unaryCtx, cancel := context.WithTimeout(ctx, config.DispatchUnaryTimeout)
	defer cancel()

	httpReq, err := a.BuildRequest(unaryCtx, req, m.ApiBase, m.ApiPath, m.ApiKey, m.ModelName)
	if err != nil {
		content.Status = string(rmodel.KindTransportError)
		content.Error = err.Error()
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindTransportError, "build request", err)
	}

	resp, err := upstream.Do(httpReq)
	if err != nil {
		content.Status = string(rmodel.KindTransportError)
		content.Error = err.Error()
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindTransportError, "upstream call", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := upstream.ReadBodyExcerpt(resp, 2048)
		content.Status = string(rmodel.KindUpstreamHTTPError)
		content.Error = excerpt
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindUpstreamHTTPError, "upstream status "+resp.Status, nil)
	}

	standard, err := a.ParseResponse(resp)
	if err != nil {
		content.Status = string(rmodel.KindEmptyResponse)
		content.Error = err.Error()
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindEmptyResponse, "parse response", err)
	}

	if !validSuccess(standard) {
		content.Status = string(rmodel.KindEmptyResponse)
		content.Error = "empty choices or content"
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return nil, rmodel.NewDispatchError(rmodel.KindEmptyResponse, "empty response content", nil)
	}

	quota.EstimateUsage(req, standard)

	content.Status = "success"
	// model.Usage mirrors rmodel.Usage's shape for log embedding without an
	// import cycle (see model/operation_log.go); copier bridges the two
	// structs by field name instead of listing every field by hand.
	var loggedUsage model.Usage
	if err := copier.Copy(&loggedUsage, &standard.Usage); err != nil {
		logger.Logger.Warn("copy usage for log failed", zap.Error(err))
	}
	content.Usage = &loggedUsage
	e.log(ctx, model.LogTypeUnarySuccess, m.Id, m.Vendor, content, 1)

	if standard.Usage.TotalTokens > 0 {
		if _, err := e.Repo.IncrementQuota(ctx, m.Id, int64(standard.Usage.TotalTokens), config.QuotaAlertThreshold); err != nil {
			logger.Logger.Warn("increment quota failed", zap.Int("model_id", m.Id), zap.Error(err))
		}
	}

	return standard, nil
}

// validSuccess applies spec.md §4.2's unary success validation: a non-empty
// choices array whose first message content is non-empty after trimming.
func validSuccess(resp *rmodel.StandardResponse) bool {
	if resp == nil || len(resp.Choices) == 0 {
		return false
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content) != ""
}

// DispatchStream executes the streaming path. Only the initial open
// participates in failover; once a stream opens successfully, mid-stream
// failures are not retried (spec.md §4.2 rule 6).
func (e *Engine) DispatchStream(ctx context.Context, req *rmodel.StandardRequest, w io.Writer) error {
	list, err := e.candidates(ctx, req.Model)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return rmodel.NewDispatchError(rmodel.KindNoAvailableModel, "no eligible model configured", nil)
	}

	var lastErr error
	for _, m := range list {
		continueFailover, streamErr := e.attemptStream(ctx, req, m, w)
		if streamErr == nil {
			return nil
		}
		lastErr = streamErr
		if !continueFailover {
			// Either the stream opened and then failed mid-relay, or the
			// candidate answered with a non-200 status: spec.md §4.2 rule 6
			// only allows failover to continue past a transport-layer open
			// failure, and attemptStream has already written whatever SSE
			// frame the failure calls for.
			return streamErr
		}
	}

	_ = streaming.WriteOpenFailure(w)
	return rmodel.NewDispatchError(rmodel.KindAllUpstreamsFailed, "all candidates failed to open", lastErr)
}

// attemptStream opens one candidate's streaming upstream call and relays it
// line-by-line. The returned bool reports whether failover may continue to
// the next candidate: true only for a transport-layer open failure (spec.md
// §4.2 rule 6, §9 "Streaming and cancellation"). A non-200 upstream status
// is terminal — attemptStream writes the single SSE error frame itself and
// returns false so DispatchStream stops instead of trying another candidate.
func (e *Engine) attemptStream(ctx context.Context, req *rmodel.StandardRequest, m model.ModelRecord, w io.Writer) (continueFailover bool, err error) {
	content := model.AttemptLogContent{RequestedModel: req.Model, AttemptedModel: m.ModelName}

	a, ok := adaptor.Resolve(m.Vendor, m.ApiSpec)
	if !ok {
		content.Status = string(rmodel.KindTransportError)
		content.Error = "no adapter registered for vendor/spec"
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return true, rmodel.NewDispatchError(rmodel.KindTransportError, "no adapter registered for "+m.Vendor, nil)
	}

	streamCtx, cancel := context.WithTimeout(ctx, config.DispatchStreamTimeout)
	defer cancel()

	httpReq, err := a.BuildRequest(streamCtx, req, m.ApiBase, m.ApiPath, m.ApiKey, m.ModelName)
	if err != nil {
		content.Status = string(rmodel.KindTransportError)
		content.Error = err.Error()
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return true, rmodel.NewDispatchError(rmodel.KindTransportError, "build request", err)
	}

	resp, err := upstream.Do(httpReq)
	if err != nil {
		content.Status = string(rmodel.KindTransportError)
		content.Error = err.Error()
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		return true, rmodel.NewDispatchError(rmodel.KindTransportError, "upstream call", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := upstream.ReadBodyExcerpt(resp, 2048)
		content.Status = string(rmodel.KindUpstreamHTTPError)
		content.Error = excerpt
		e.log(ctx, model.LogTypeFailure, m.Id, m.Vendor, content, 0)
		_ = streaming.WriteOpenFailure(w)
		return false, rmodel.NewDispatchError(rmodel.KindUpstreamHTTPError, "upstream status "+resp.Status, nil)
	}

	defer resp.Body.Close()
	content.Status = "success"
	e.log(ctx, model.LogTypeUnarySuccess, m.Id, m.Vendor, content, 1)

	it := streaming.NewLineIterator(resp.Body)
	for {
		line, ok := it.Next()
		if !ok {
			break
		}
		chunks, parseErr := a.ParseStreamChunk([]byte(line))
		if parseErr != nil {
			continue
		}
		for _, c := range chunks {
			if werr := streaming.WriteChunk(w, c); werr != nil {
				return false, errors.Wrap(werr, "write stream chunk")
			}
		}
	}
	if err := it.Err(); err != nil {
		logger.Logger.Warn("stream relay read error", zap.Int("model_id", m.Id), zap.Error(err))
	}

	return false, streaming.WriteDone(w)
}

func (e *Engine) log(ctx context.Context, logType, modelId int, vendor string, content model.AttemptLogContent, status int) {
	outcome := content.Status
	if outcome == "" {
		outcome = "unknown"
	}
	monitor.DispatchAttempts.WithLabelValues(vendor, outcome).Inc()

	entry := &model.OperationLog{
		LogType:    logType,
		ModelId:    modelId,
		LogContent: content.Marshal(),
		Status:     status,
	}
	if err := e.Repo.AppendLog(ctx, entry); err != nil {
		logger.Logger.Warn("append operation log failed", zap.Error(err), zap.Int("model_id", modelId))
	}
}

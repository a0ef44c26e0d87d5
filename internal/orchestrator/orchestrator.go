// Package orchestrator runs the message pipeline: conversation context,
// language detection, entity resolution, agent selection, tool execution,
// result classification, and response formatting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell/internal/conversation"
	"github.com/inkwell-ai/inkwell/internal/format"
	"github.com/inkwell-ai/inkwell/internal/observability"
	"github.com/inkwell-ai/inkwell/internal/resolver"
	"github.com/inkwell-ai/inkwell/internal/routing"
	"github.com/inkwell-ai/inkwell/internal/toolresult"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// ToolExecutor runs one tool against the tool service.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, parameters map[string]any) ([]byte, error)
}

// Options configures an Orchestrator.
type Options struct {
	Store       conversation.Store
	Resolver    *resolver.Resolver
	Table       *routing.Table
	Planner     *Planner
	Executor    ToolExecutor
	Gate        *format.Gate
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	ToolTimeout time.Duration
}

// Orchestrator processes chat messages end to end. It is safe for
// concurrent use; per-conversation ordering is the store's concern.
type Orchestrator struct {
	store       conversation.Store
	resolver    *resolver.Resolver
	table       *routing.Table
	planner     *Planner
	executor    ToolExecutor
	gate        *format.Gate
	metrics     *observability.Metrics
	logger      *slog.Logger
	toolTimeout time.Duration
}

// New builds an orchestrator. Store, Executor, and Gate are required; nil
// Resolver, Table, and Planner fall back to the defaults.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("orchestrator: tool executor is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("orchestrator: formatter gate is required")
	}
	if opts.Resolver == nil {
		opts.Resolver = resolver.New(nil)
	}
	if opts.Table == nil {
		opts.Table = routing.DefaultTable()
	}
	if opts.Planner == nil {
		opts.Planner = NewPlanner()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger.Debug("routing table compiled", "agents", opts.Table.Agents())
	return &Orchestrator{
		store:       opts.Store,
		resolver:    opts.Resolver,
		table:       opts.Table,
		planner:     opts.Planner,
		executor:    opts.Executor,
		gate:        opts.Gate,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		toolTimeout: opts.ToolTimeout,
	}, nil
}

// HandleMessage runs one chat message through the full pipeline. A
// cancelled context aborts before any conversation state is written.
func (o *Orchestrator) HandleMessage(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return models.ChatResponse{}, err
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	snap, err := o.store.GetOrCreate(ctx, conversationID)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("loading conversation %s: %w", conversationID, err)
	}

	lang := DetectLanguage(req.Message, snap.Language)
	if lang != snap.Language {
		if err := o.store.SetLanguage(ctx, conversationID, lang); err != nil {
			return models.ChatResponse{}, fmt.Errorf("recording language: %w", err)
		}
	}

	resolved := o.resolver.Resolve(req.Message, snap)
	routed := appendFileContext(resolved, req.Files)
	agent := o.table.Select(routed, lang)
	if o.metrics != nil {
		o.metrics.MessageCounter.WithLabelValues(agent, string(lang)).Inc()
	}

	log := o.logger.With(
		"conversation_id", conversationID,
		"agent", agent,
		"language", string(lang),
	)
	if o.table.Defaulted(agent) {
		log.Debug("no agent matched, using default")
	}

	tool, params, ok := o.planner.Plan(agent, Invocation{
		Message:  resolved,
		Language: lang,
		Files:    req.Files,
		User:     req.Context,
	})
	if !ok {
		return models.ChatResponse{}, fmt.Errorf("no plan for agent %s", agent)
	}
	if !o.table.Allowed(agent, tool) {
		if o.metrics != nil {
			o.metrics.ErrorCounter.WithLabelValues("orchestrator", "tool_not_permitted").Inc()
		}
		return models.ChatResponse{}, fmt.Errorf("agent %s may not invoke %s", agent, tool)
	}

	outcome := o.execute(ctx, log, tool, params)
	if o.metrics != nil {
		o.metrics.ClassifierOutcomes.WithLabelValues(string(outcome.Tier)).Inc()
	}
	if outcome.Heuristic {
		log.Warn("tool failure detected heuristically",
			"tool", tool,
			"reason", outcome.Reason,
		)
	}

	if ctx.Err() != nil {
		return models.ChatResponse{}, ctx.Err()
	}

	if !outcome.Failed() {
		if entities := toolresult.ExtractEntities(tool, outcome.Payload); entities != nil {
			for kind, pairs := range entities {
				if err := o.store.RecordEntities(ctx, conversationID, kind, pairs); err != nil {
					return models.ChatResponse{}, fmt.Errorf("recording entities: %w", err)
				}
			}
		}
	}

	response := o.gate.Render(ctx, format.Request{
		Language:    lang,
		UserMessage: req.Message,
		Agent:       agent,
		Tool:        tool,
		Payload:     outcome.Payload,
	}, outcome)

	if ctx.Err() != nil {
		return models.ChatResponse{}, ctx.Err()
	}
	if err := o.appendHistory(ctx, conversationID, agent, req.Message, response); err != nil {
		return models.ChatResponse{}, err
	}

	return models.ChatResponse{
		Response:       response,
		ConversationID: conversationID,
		Metadata: models.ChatMetadata{
			Agent:    agent,
			Language: lang,
		},
	}, nil
}

// appendFileContext adds attached file names to the message used for
// routing and planning, so an attachment reaches the document agent even
// when the message itself never mentions one.
func appendFileContext(message string, files []models.FileRef) string {
	if len(files) == 0 {
		return message
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return message + " [attached: " + strings.Join(names, ", ") + "]"
}

// execute runs one tool call under the tool timeout and classifies the
// result. Transport errors become failure outcomes rather than pipeline
// errors: the user gets told what happened either way.
func (o *Orchestrator) execute(ctx context.Context, log *slog.Logger, tool string, params map[string]any) toolresult.Outcome {
	execCtx := ctx
	if o.toolTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, o.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := o.executor.Execute(execCtx, tool, params)
	elapsed := time.Since(start)

	var outcome toolresult.Outcome
	status := ""
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		status = "timeout"
		outcome = toolresult.Outcome{
			Status:  toolresult.StatusFailure,
			Tier:    toolresult.TierStructured,
			Reason:  fmt.Sprintf("the %s operation timed out", tool),
			Payload: toolresult.Decode(payload),
		}
	case err != nil:
		status = "failure"
		reason := err.Error()
		// Prefer the service's own message when the body carries one. An
		// empty or undecodable body has nothing better to say than the
		// transport error itself.
		if body := toolresult.Classify(payload); body.Failed() && body.Tier != toolresult.TierMalformed && body.Reason != "" {
			reason = body.Reason
		}
		outcome = toolresult.Outcome{
			Status:  toolresult.StatusFailure,
			Tier:    toolresult.TierStructured,
			Reason:  reason,
			Payload: toolresult.Decode(payload),
		}
	default:
		outcome = toolresult.Classify(payload)
		status = string(outcome.Status)
	}

	if o.metrics != nil {
		o.metrics.ToolExecutionCounter.WithLabelValues(tool, status).Inc()
		o.metrics.ToolExecutionDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
		if outcome.Failed() {
			o.metrics.ErrorCounter.WithLabelValues("tools", string(outcome.Status)).Inc()
		}
	}
	if err != nil {
		log.Warn("tool execution failed",
			"tool", tool,
			"status", status,
			"error", err,
		)
	}
	return outcome
}

// appendHistory records the user turn and the assistant's reply. Both
// writes happen only after the pipeline produced a response, so a
// cancelled request leaves no partial history.
func (o *Orchestrator) appendHistory(ctx context.Context, conversationID, agent, userMessage, response string) error {
	userMsg := &models.Message{
		Role:    models.RoleUser,
		Content: userMessage,
	}
	if err := o.store.AppendMessage(ctx, conversationID, userMsg); err != nil {
		return fmt.Errorf("recording user message: %w", err)
	}
	assistantMsg := &models.Message{
		Role:    models.RoleAssistant,
		Content: response,
		AgentID: agent,
	}
	if err := o.store.AppendMessage(ctx, conversationID, assistantMsg); err != nil {
		return fmt.Errorf("recording assistant message: %w", err)
	}
	return nil
}

// History exposes conversation history for the gateway.
func (o *Orchestrator) History(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	return o.store.History(ctx, conversationID, limit)
}

package temporal

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/google/uuid"

	"github.com/temporal-sa/interactive-research/engine"
	"github.com/temporal-sa/interactive-research/research"
)

// Engine implements engine.Engine against a Temporal server. It holds a
// non-owning view of workflow executions: every operation addresses the
// execution by ID and the Temporal server remains the single source of truth.
//
// The client is injected by the process's top-level composition and closed
// there; the engine itself keeps no mutable state, so all methods are safe
// for concurrent use.
type Engine struct {
	client    client.Client
	taskQueue string
}

// New wraps an established Temporal client. The task queue names the channel
// through which executions reach the worker process.
func New(c client.Client, taskQueue string) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("temporal client is required")
	}
	if taskQueue == "" {
		return nil, fmt.Errorf("task queue is required")
	}
	return &Engine{client: c, taskQueue: taskQueue}, nil
}

// Start launches a fresh research workflow and delivers the trimmed query
// through the start_research update, blocking until the workflow has accepted
// it and produced its clarification questions. Empty queries pass through.
func (e *Engine) Start(ctx context.Context, query string) (string, error) {
	workflowID := newWorkflowID()

	_, err := e.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: e.taskQueue,
	}, research.WorkflowName, (*research.WorkflowInput)(nil))
	if err != nil {
		return "", fmt.Errorf("start workflow: %w", mapServiceError(err))
	}

	handle, err := e.client.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		WorkflowID:   workflowID,
		UpdateName:   research.UpdateStartResearch,
		Args:         []any{&research.UserQueryInput{Query: strings.TrimSpace(query)}},
		WaitForStage: client.WorkflowUpdateStageCompleted,
	})
	if err != nil {
		return "", fmt.Errorf("start research update: %w", mapServiceError(err))
	}
	var status string
	if err := handle.Get(ctx, &status); err != nil {
		return "", fmt.Errorf("start research update: %w", mapUpdateError(err))
	}
	return workflowID, nil
}

// Status performs a synchronous get_status query and returns the fresh view.
func (e *Engine) Status(ctx context.Context, workflowID string) (*research.StatusView, error) {
	resp, err := e.client.QueryWorkflow(ctx, workflowID, "", research.QueryGetStatus)
	if err != nil {
		return nil, fmt.Errorf("query status: %w", mapServiceError(err))
	}
	var view research.StatusView
	if err := resp.Get(&view); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &view, nil
}

// SubmitAnswer sends one clarification answer as a synchronous update and
// waits for the workflow to durably record it. Ordering between concurrent
// submissions is whatever the server decides; no ordering is imposed here.
func (e *Engine) SubmitAnswer(ctx context.Context, workflowID string, questionIndex int, answer string) error {
	handle, err := e.client.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		WorkflowID: workflowID,
		UpdateName: research.UpdateProvideClarification,
		Args: []any{&research.SingleClarificationInput{
			QuestionIndex: questionIndex,
			Answer:        strings.TrimSpace(answer),
		}},
		WaitForStage: client.WorkflowUpdateStageCompleted,
	})
	if err != nil {
		return fmt.Errorf("submit answer: %w", mapServiceError(err))
	}
	var status string
	if err := handle.Get(ctx, &status); err != nil {
		return fmt.Errorf("submit answer: %w", mapUpdateError(err))
	}
	return nil
}

// Result checks the execution's terminal state via a describe call before
// fetching the payload, so polling before completion fails fast with
// engine.ErrResultNotReady instead of blocking on the run.
func (e *Engine) Result(ctx context.Context, workflowID string) (*research.Result, error) {
	desc, err := e.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe workflow: %w", mapServiceError(err))
	}
	if desc.GetWorkflowExecutionInfo().GetStatus() != enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		return nil, engine.ErrResultNotReady
	}

	var result research.Result
	if err := e.client.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("fetch result: %w", mapServiceError(err))
	}
	return &result, nil
}

// newWorkflowID returns "interactive-research-" plus an 8 hex char suffix,
// matching the ID scheme of existing deployments.
func newWorkflowID() string {
	u := uuid.New()
	return "interactive-research-" + hex.EncodeToString(u[:4])
}

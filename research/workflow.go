package research

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Application error types attached to update rejections so callers can map
// them without parsing messages.
const (
	ErrTypeInvalidClarification = "InvalidClarification"
	ErrTypeClarificationsClosed = "ClarificationsClosed"
	ErrTypeAlreadyStarted       = "AlreadyStarted"
)

// InteractiveResearchWorkflow drives one research session: it waits for the
// user query via the start_research update, produces clarification questions,
// collects answers one at a time via provide_single_clarification updates and
// finally runs the research and artifact activities.
//
// All consistency, retry and replay semantics are Temporal's; the workflow
// keeps no state outside its deterministic execution.
func InteractiveResearchWorkflow(ctx workflow.Context, input *WorkflowInput) (*Result, error) {
	state := newWorkflowState(input)
	logger := workflow.GetLogger(ctx)

	if err := workflow.SetQueryHandler(ctx, QueryGetStatus, func() (*StatusView, error) {
		return state.view(), nil
	}); err != nil {
		return nil, fmt.Errorf("register %s query: %w", QueryGetStatus, err)
	}

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateStartResearch,
		state.startResearch,
		workflow.UpdateHandlerOptions{Validator: state.validateStart},
	); err != nil {
		return nil, fmt.Errorf("register %s update: %w", UpdateStartResearch, err)
	}

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateProvideClarification,
		state.provideClarification,
		workflow.UpdateHandlerOptions{Validator: state.validateClarification},
	); err != nil {
		return nil, fmt.Errorf("register %s update: %w", UpdateProvideClarification, err)
	}

	// A query may be seeded at start time; the common path delivers it through
	// the start_research update instead.
	if input != nil && input.InitialQuery != nil {
		if _, err := state.startResearch(ctx, &UserQueryInput{Query: *input.InitialQuery}); err != nil {
			return nil, err
		}
	}

	if err := workflow.Await(ctx, func() bool { return state.status == StatusResearching }); err != nil {
		return nil, err
	}

	mergeCtx := workflow.WithActivityOptions(ctx, mergeActivityOptions())
	var merged ProcessClarificationOutput
	if err := workflow.ExecuteActivity(mergeCtx, ActivityProcessClarification, &ProcessClarificationInput{
		Query:     state.query,
		Questions: state.questions,
		Responses: state.responsesCopy(),
	}).Get(mergeCtx, &merged); err != nil {
		return nil, err
	}

	modelCtx := workflow.WithActivityOptions(ctx, modelActivityOptions())
	var result Result
	if err := workflow.ExecuteActivity(modelCtx, ActivityRunResearch, &ResearchInput{
		Instructions: merged.Instructions,
	}).Get(modelCtx, &result); err != nil {
		return nil, err
	}

	// Artifact generation is best effort; the report is the deliverable.
	artifactCtx := workflow.WithActivityOptions(ctx, artifactActivityOptions())
	artifact := &ArtifactInput{
		WorkflowID:     workflow.GetInfo(ctx).WorkflowExecution.ID,
		MarkdownReport: result.MarkdownReport,
		ShortSummary:   result.ShortSummary,
	}
	if err := workflow.ExecuteActivity(artifactCtx, ActivityGeneratePDF, artifact).Get(artifactCtx, nil); err != nil {
		logger.Warn("pdf generation failed", "error", err)
	}
	if err := workflow.ExecuteActivity(artifactCtx, ActivityGenerateImage, artifact).Get(artifactCtx, nil); err != nil {
		logger.Warn("image generation failed", "error", err)
	}

	state.status = StatusComplete
	return &result, nil
}

type workflowState struct {
	status             Status
	started            bool
	query              string
	questions          []string
	currentIndex       int
	responses          map[string]string
	skipClarifications bool
}

func newWorkflowState(input *WorkflowInput) *workflowState {
	s := &workflowState{
		status:    StatusPending,
		responses: make(map[string]string),
	}
	if input != nil {
		s.skipClarifications = input.SkipClarifications
	}
	return s
}

func (s *workflowState) validateStart(_ workflow.Context, in *UserQueryInput) error {
	if in == nil {
		return temporal.NewApplicationError("query input is required", ErrTypeInvalidClarification)
	}
	if s.started {
		return temporal.NewApplicationError("research already started", ErrTypeAlreadyStarted)
	}
	return nil
}

// startResearch records the query and produces the clarification questions.
// An empty query is accepted; the clarifying agent handles it like any other
// input.
func (s *workflowState) startResearch(ctx workflow.Context, in *UserQueryInput) (string, error) {
	// Flagged before the first blocking point so a concurrent start is
	// rejected while questions are still being generated.
	s.started = true
	s.query = strings.TrimSpace(in.Query)
	if s.skipClarifications {
		s.status = StatusResearching
		return string(s.status), nil
	}

	modelCtx := workflow.WithActivityOptions(ctx, modelActivityOptions())
	var out ClarifyOutput
	if err := workflow.ExecuteActivity(modelCtx, ActivityGenerateQuestions, &ClarifyInput{Query: s.query}).Get(modelCtx, &out); err != nil {
		return "", err
	}
	s.questions = out.Questions
	if len(s.questions) == 0 {
		s.status = StatusResearching
	} else {
		s.status = StatusAwaitingClarifications
	}
	return string(s.status), nil
}

func (s *workflowState) validateClarification(_ workflow.Context, in *SingleClarificationInput) error {
	if in == nil {
		return temporal.NewApplicationError("clarification input is required", ErrTypeInvalidClarification)
	}
	if s.status != StatusAwaitingClarifications {
		return temporal.NewApplicationError(
			fmt.Sprintf("clarifications no longer accepted in status %q", s.status),
			ErrTypeClarificationsClosed,
		)
	}
	if in.QuestionIndex < 0 || in.QuestionIndex >= len(s.questions) {
		return temporal.NewApplicationError(
			fmt.Sprintf("question index %d out of range [0, %d)", in.QuestionIndex, len(s.questions)),
			ErrTypeInvalidClarification,
		)
	}
	return nil
}

func (s *workflowState) provideClarification(_ workflow.Context, in *SingleClarificationInput) (string, error) {
	s.responses[ResponseKey(in.QuestionIndex)] = strings.TrimSpace(in.Answer)
	if next := in.QuestionIndex + 1; next > s.currentIndex {
		s.currentIndex = next
	}
	if len(s.responses) >= len(s.questions) {
		s.status = StatusResearching
	}
	return string(s.status), nil
}

func (s *workflowState) view() *StatusView {
	v := &StatusView{
		Status:                 s.status,
		OriginalQuery:          s.query,
		ClarificationQuestions: append([]string(nil), s.questions...),
		CurrentQuestionIndex:   s.currentIndex,
		ClarificationResponses: s.responsesCopy(),
	}
	v.CurrentQuestion = v.DeriveCurrentQuestion()
	return v
}

func (s *workflowState) responsesCopy() map[string]string {
	out := make(map[string]string, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

// modelActivityOptions mirror the model activity parameters of the original
// deployment: generous timeouts with a capped exponential retry policy.
func modelActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout:    200 * time.Second,
		ScheduleToCloseTimeout: 500 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			MaximumInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
}

func mergeActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
}

func artifactActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
}

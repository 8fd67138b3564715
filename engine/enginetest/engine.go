// Package enginetest provides an in-memory engine.Engine for exercising the
// HTTP layer without a Temporal server. It reproduces the workflow's phase
// transitions and validation rules but none of its durability.
package enginetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/temporal-sa/interactive-research/engine"
	"github.com/temporal-sa/interactive-research/research"
)

// Engine is a scripted in-memory implementation of engine.Engine. The zero
// value is usable; configure Questions before the first Start call.
type Engine struct {
	mu sync.Mutex

	// Questions is the clarification list every started workflow receives.
	Questions []string

	// StartErr, when set, is returned by Start.
	StartErr error

	views   map[string]*research.StatusView
	results map[string]*research.Result
	nextID  int
}

var _ engine.Engine = (*Engine)(nil)

// Start creates a new scripted workflow in the awaiting-clarifications phase
// (or researching when the question list is empty).
func (e *Engine) Start(_ context.Context, query string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.StartErr != nil {
		return "", e.StartErr
	}
	e.nextID++
	id := fmt.Sprintf("interactive-research-%08x", e.nextID)
	status := research.StatusAwaitingClarifications
	if len(e.Questions) == 0 {
		status = research.StatusResearching
	}
	e.ensureMaps()
	view := &research.StatusView{
		Status:                 status,
		OriginalQuery:          strings.TrimSpace(query),
		ClarificationQuestions: append([]string(nil), e.Questions...),
		ClarificationResponses: make(map[string]string),
	}
	view.CurrentQuestion = view.DeriveCurrentQuestion()
	e.views[id] = view
	return id, nil
}

// Status returns a copy of the workflow's current view.
func (e *Engine) Status(_ context.Context, workflowID string) (*research.StatusView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	view, ok := e.views[workflowID]
	if !ok {
		return nil, engine.ErrWorkflowNotFound
	}
	copied := *view
	copied.ClarificationQuestions = append([]string(nil), view.ClarificationQuestions...)
	copied.ClarificationResponses = make(map[string]string, len(view.ClarificationResponses))
	for k, v := range view.ClarificationResponses {
		copied.ClarificationResponses[k] = v
	}
	return &copied, nil
}

// SubmitAnswer applies the workflow's acceptance rules: answers are only
// accepted in the awaiting phase with an in-range index.
func (e *Engine) SubmitAnswer(_ context.Context, workflowID string, questionIndex int, answer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	view, ok := e.views[workflowID]
	if !ok {
		return engine.ErrWorkflowNotFound
	}
	if view.Status != research.StatusAwaitingClarifications {
		return engine.ErrClarificationsClosed
	}
	if questionIndex < 0 || questionIndex >= len(view.ClarificationQuestions) {
		return engine.ErrInvalidClarification
	}
	view.ClarificationResponses[research.ResponseKey(questionIndex)] = strings.TrimSpace(answer)
	if next := questionIndex + 1; next > view.CurrentQuestionIndex {
		view.CurrentQuestionIndex = next
	}
	if len(view.ClarificationResponses) >= len(view.ClarificationQuestions) {
		view.Status = research.StatusResearching
	}
	view.CurrentQuestion = view.DeriveCurrentQuestion()
	return nil
}

// Result returns the scripted terminal payload once Complete has been called.
func (e *Engine) Result(_ context.Context, workflowID string) (*research.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	view, ok := e.views[workflowID]
	if !ok {
		return nil, engine.ErrWorkflowNotFound
	}
	if view.Status != research.StatusComplete {
		return nil, engine.ErrResultNotReady
	}
	result, ok := e.results[workflowID]
	if !ok {
		return nil, engine.ErrResultNotReady
	}
	copied := *result
	copied.FollowUpQuestions = append([]string(nil), result.FollowUpQuestions...)
	return &copied, nil
}

// Complete transitions a workflow to its terminal state with the given
// payload.
func (e *Engine) Complete(workflowID string, result research.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if view, ok := e.views[workflowID]; ok {
		view.Status = research.StatusComplete
	}
	e.ensureMaps()
	e.results[workflowID] = &result
}

// SetView overwrites a workflow's status view, letting tests script states
// the normal transitions would not produce (for example an index past the
// question count).
func (e *Engine) SetView(workflowID string, view research.StatusView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureMaps()
	if view.ClarificationResponses == nil {
		view.ClarificationResponses = make(map[string]string)
	}
	e.views[workflowID] = &view
}

func (e *Engine) ensureMaps() {
	if e.views == nil {
		e.views = make(map[string]*research.StatusView)
	}
	if e.results == nil {
		e.results = make(map[string]*research.Result)
	}
}

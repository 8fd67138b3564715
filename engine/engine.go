// Package engine defines the durable-workflow capability the HTTP layer
// depends on. It exposes only the four primitives the bridge needs (start,
// status query, answer submission, result fetch) so the Temporal-backed
// adapter and the in-memory test fake are interchangeable.
//
// Implementations never layer retries or compensation on top of these
// operations; transient-failure handling belongs to the backing engine's
// own client and workflow definitions.
package engine

import (
	"context"
	"errors"

	"github.com/temporal-sa/interactive-research/research"
)

var (
	// ErrWorkflowNotFound indicates that no workflow execution exists for the
	// given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrResultNotReady indicates the workflow has not reached a completed
	// terminal state yet. Polling again before completion yields the same error.
	ErrResultNotReady = errors.New("research not complete yet")

	// ErrInvalidClarification indicates the workflow rejected a clarification
	// answer, typically because the question index is out of range.
	ErrInvalidClarification = errors.New("invalid clarification answer")

	// ErrClarificationsClosed indicates the workflow is past the clarification
	// phase and no longer accepts answers.
	ErrClarificationsClosed = errors.New("clarifications no longer accepted")

	// ErrResearchAlreadyStarted indicates a start update was sent to a
	// workflow that already received its query.
	ErrResearchAlreadyStarted = errors.New("research already started")

	// ErrEngineUnavailable indicates the durable-execution engine could not be
	// reached or refused the connection.
	ErrEngineUnavailable = errors.New("workflow engine unavailable")

	// ErrStreamingUnsupported indicates live status streaming is not
	// implemented by this engine.
	ErrStreamingUnsupported = errors.New("status streaming not implemented")
)

// Engine abstracts the durable-execution backend behind the exact operations
// the HTTP bridge performs. The production implementation lives in the
// temporal subpackage; enginetest provides an in-memory fake for tests.
type Engine interface {
	// Start launches a new research workflow, submits the user query as the
	// initial update and returns the generated workflow ID. The query is
	// passed through as-is after whitespace trimming; an empty query is
	// accepted.
	Start(ctx context.Context, query string) (string, error)

	// Status returns a fresh view of the workflow's current state. It fails
	// with ErrWorkflowNotFound for unknown IDs and never synthesizes a
	// default view.
	Status(ctx context.Context, workflowID string) (*research.StatusView, error)

	// SubmitAnswer relays a clarification answer into the running workflow
	// and blocks until the workflow has durably processed it. Rejections by
	// the workflow's own acceptance logic surface as ErrInvalidClarification
	// or ErrClarificationsClosed.
	SubmitAnswer(ctx context.Context, workflowID string, questionIndex int, answer string) error

	// Result returns the terminal research payload. It fails with
	// ErrResultNotReady until the workflow reaches its completed terminal
	// state and with ErrWorkflowNotFound for unknown IDs.
	Result(ctx context.Context, workflowID string) (*research.Result, error)
}

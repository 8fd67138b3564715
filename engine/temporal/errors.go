package temporal

import (
	"errors"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/temporal"

	"github.com/temporal-sa/interactive-research/engine"
	"github.com/temporal-sa/interactive-research/research"
)

// mapServiceError translates Temporal service errors into the bridge's error
// taxonomy. Unknown errors pass through untouched.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return engine.ErrWorkflowNotFound
	}
	var unavailable *serviceerror.Unavailable
	if errors.As(err, &unavailable) {
		return engine.ErrEngineUnavailable
	}
	return err
}

// mapUpdateError translates update rejections into sentinel errors using the
// application error type the workflow validators attach.
func mapUpdateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case research.ErrTypeInvalidClarification:
			return engine.ErrInvalidClarification
		case research.ErrTypeClarificationsClosed:
			return engine.ErrClarificationsClosed
		case research.ErrTypeAlreadyStarted:
			return engine.ErrResearchAlreadyStarted
		}
	}
	return mapServiceError(err)
}

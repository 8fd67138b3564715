package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"goa.design/clue/log"

	"github.com/temporal-sa/interactive-research/research"
)

// StartResearchRequest is the body of POST /api/start-research.
type StartResearchRequest struct {
	Query string `json:"query"`
}

// AnswerRequest is the body of POST /api/answer/{id}/{index}.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// handleStartResearch starts a new research workflow. The query is trimmed
// but otherwise passed through unchanged; an empty query is accepted, as in
// existing deployments.
func (s *Server) handleStartResearch(w http.ResponseWriter, r *http.Request) {
	var req StartResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workflowID, err := s.engine.Start(r.Context(), strings.TrimSpace(req.Query))
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"workflow_id": workflowID,
		"status":      "started",
	})
}

// handleStatus projects the workflow's status view into the client document.
// While clarifications are pending the current question is re-derived from
// the question list and index; the workflow-reported value is ignored.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflow_id")

	view, err := s.engine.Status(r.Context(), workflowID)
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	currentQuestion := view.CurrentQuestion
	if view.Status == research.StatusAwaitingClarifications {
		currentQuestion = view.DeriveCurrentQuestion()
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"workflow_id":             workflowID,
		"status":                  view.Status,
		"original_query":          view.OriginalQuery,
		"current_question":        currentQuestion,
		"current_question_index":  view.CurrentQuestionIndex,
		"total_questions":         view.TotalQuestions(),
		"clarification_responses": view.ClarificationResponses,
	})
}

// handleAnswer relays one clarification answer, then reports the fresh
// status. questions_remaining is total minus the current index, uncorrected:
// it can go negative when the workflow has already advanced past the
// submitted index.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflow_id")
	questionIndex, err := strconv.Atoi(chi.URLParam(r, "question_index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "question index must be an integer")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.engine.SubmitAnswer(r.Context(), workflowID, questionIndex, strings.TrimSpace(req.Answer)); err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	view, err := s.engine.Status(r.Context(), workflowID)
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":              "accepted",
		"workflow_status":     view.Status,
		"questions_remaining": view.TotalQuestions() - view.CurrentQuestionIndex,
	})
}

// handleResult returns the terminal research payload, failing with the same
// 400 on every poll until the workflow completes.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflow_id")

	result, err := s.engine.Result(r.Context(), workflowID)
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"workflow_id":         workflowID,
		"markdown_report":     result.MarkdownReport,
		"short_summary":       result.ShortSummary,
		"follow_up_questions": followUps(result.FollowUpQuestions),
	})
}

// handleStream is the documented SSE endpoint, specified as unimplemented.
// It always fails with 501; the contract is preserved as a stub rather than
// removed.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotImplemented, "status streaming not implemented")
}

// handleHealth echoes the process configuration. It performs no engine call,
// so it reports 200 whether or not the engine is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"temporal_endpoint":  s.cfg.TemporalEndpoint,
		"temporal_namespace": s.cfg.TemporalNamespace,
		"task_queue":         s.cfg.TaskQueue,
		"cloud_connection":   s.cfg.ConnectCloud,
	})
}

func (s *Server) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), err, log.KV{K: "msg", V: "engine call failed"})
	}
	respondError(w, status, errorDetail(err))
}

func followUps(questions []string) []string {
	if questions == nil {
		return []string{}
	}
	return questions
}

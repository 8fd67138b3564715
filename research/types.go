// Package research holds the interactive research workflow definition and the
// wire types shared between the workflow, its activities and the HTTP bridge.
// JSON field names follow the snake_case contract of the original deployment
// so payloads stay compatible with existing workers and frontends.
package research

import "strconv"

// WorkflowName is the workflow type registered with the worker and started by
// the HTTP bridge.
const WorkflowName = "InteractiveResearchWorkflow"

// Update, query and activity names. These are part of the wire contract: the
// bridge addresses the workflow by these names and the worker registers its
// callables under them.
const (
	UpdateStartResearch        = "start_research"
	UpdateProvideClarification = "provide_single_clarification"
	QueryGetStatus             = "get_status"

	ActivityGenerateQuestions    = "generate_questions"
	ActivityRunResearch          = "run_research"
	ActivityProcessClarification = "process_clarification"
	ActivityGeneratePDF          = "generate_pdf"
	ActivityGenerateImage        = "generate_image"
)

// Status is the client-facing lifecycle phase of a research workflow.
type Status string

const (
	// StatusPending means the workflow is running but has not received its
	// query yet.
	StatusPending Status = "pending"
	// StatusAwaitingClarifications means the workflow is blocked on the user
	// answering clarification questions.
	StatusAwaitingClarifications Status = "awaiting_clarifications"
	// StatusResearching means all clarifications are collected and research
	// is in progress.
	StatusResearching Status = "researching"
	// StatusComplete means the terminal result is available.
	StatusComplete Status = "complete"
)

// WorkflowInput optionally seeds the workflow at start time. Both fields
// default to unset: the bridge starts the workflow empty and delivers the
// query through the start_research update instead.
type WorkflowInput struct {
	InitialQuery       *string `json:"initial_query"`
	SkipClarifications bool    `json:"skip_clarifications"`
}

// UserQueryInput carries the user's research question into the
// start_research update.
type UserQueryInput struct {
	Query string `json:"query"`
}

// SingleClarificationInput carries one clarification answer, addressed by the
// position of the question it answers.
type SingleClarificationInput struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// StatusView is the read-only projection returned by the get_status query.
// It is derived fresh on every query and never cached by the bridge.
type StatusView struct {
	Status                 Status            `json:"status"`
	OriginalQuery          string            `json:"original_query"`
	ClarificationQuestions []string          `json:"clarification_questions"`
	CurrentQuestion        string            `json:"current_question"`
	CurrentQuestionIndex   int               `json:"current_question_index"`
	ClarificationResponses map[string]string `json:"clarification_responses"`
}

// TotalQuestions returns the number of clarification questions the workflow
// produced for the query.
func (v *StatusView) TotalQuestions() int {
	return len(v.ClarificationQuestions)
}

// DeriveCurrentQuestion re-derives the question text at the current index
// from the question list, independently of the reported CurrentQuestion
// field. It returns "" unless the workflow is awaiting clarifications and the
// index is within bounds.
func (v *StatusView) DeriveCurrentQuestion() string {
	if v.Status != StatusAwaitingClarifications {
		return ""
	}
	if v.CurrentQuestionIndex < 0 || v.CurrentQuestionIndex >= len(v.ClarificationQuestions) {
		return ""
	}
	return v.ClarificationQuestions[v.CurrentQuestionIndex]
}

// ResponseKey converts a question index into the map key used by
// ClarificationResponses.
func ResponseKey(index int) string {
	return strconv.Itoa(index)
}

// Result is the terminal payload of a completed research workflow.
type Result struct {
	MarkdownReport    string   `json:"markdown_report"`
	ShortSummary      string   `json:"short_summary"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// ClarifyInput is the input of the generate_questions activity.
type ClarifyInput struct {
	Query string `json:"query"`
}

// ClarifyOutput is the output of the generate_questions activity.
type ClarifyOutput struct {
	Questions []string `json:"questions"`
}

// ResearchInput is the input of the run_research activity.
type ResearchInput struct {
	Instructions string `json:"instructions"`
}

// ProcessClarificationInput is the input of the process_clarification
// activity: the original query plus the collected question/answer pairs.
type ProcessClarificationInput struct {
	Query     string            `json:"query"`
	Questions []string          `json:"questions"`
	Responses map[string]string `json:"responses"`
}

// ProcessClarificationOutput carries the enriched research instructions
// produced by merging the query with the clarification answers.
type ProcessClarificationOutput struct {
	Instructions string `json:"instructions"`
}

// ArtifactInput is the input of the generate_pdf and generate_image
// activities.
type ArtifactInput struct {
	WorkflowID     string `json:"workflow_id"`
	MarkdownReport string `json:"markdown_report"`
	ShortSummary   string `json:"short_summary"`
}

// ArtifactOutput reports where a generated artifact was written.
type ArtifactOutput struct {
	Path string `json:"path"`
}

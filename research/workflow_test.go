package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

type fakeActivities struct {
	questions         []string
	questionsCalled   bool
	pdfErr            error
	processedQueries  []string
	generatedArtifact *ArtifactInput
}

func (f *fakeActivities) generateQuestions(_ context.Context, in *ClarifyInput) (*ClarifyOutput, error) {
	f.questionsCalled = true
	f.processedQueries = append(f.processedQueries, in.Query)
	return &ClarifyOutput{Questions: f.questions}, nil
}

func (f *fakeActivities) processClarification(_ context.Context, in *ProcessClarificationInput) (*ProcessClarificationOutput, error) {
	return &ProcessClarificationOutput{Instructions: "instructions for: " + in.Query}, nil
}

func (f *fakeActivities) runResearch(_ context.Context, in *ResearchInput) (*Result, error) {
	return &Result{
		MarkdownReport:    "# Report\n\n" + in.Instructions,
		ShortSummary:      "summary",
		FollowUpQuestions: []string{"follow up?"},
	}, nil
}

func (f *fakeActivities) generatePDF(_ context.Context, in *ArtifactInput) (*ArtifactOutput, error) {
	if f.pdfErr != nil {
		return nil, f.pdfErr
	}
	f.generatedArtifact = in
	return &ArtifactOutput{Path: "out/report.md"}, nil
}

func (f *fakeActivities) generateImage(_ context.Context, _ *ArtifactInput) (*ArtifactOutput, error) {
	return &ArtifactOutput{Path: "out/summary.txt"}, nil
}

func newEnv(t *testing.T, fakes *fakeActivities) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(InteractiveResearchWorkflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(fakes.generateQuestions, activity.RegisterOptions{Name: ActivityGenerateQuestions})
	env.RegisterActivityWithOptions(fakes.processClarification, activity.RegisterOptions{Name: ActivityProcessClarification})
	env.RegisterActivityWithOptions(fakes.runResearch, activity.RegisterOptions{Name: ActivityRunResearch})
	env.RegisterActivityWithOptions(fakes.generatePDF, activity.RegisterOptions{Name: ActivityGeneratePDF})
	env.RegisterActivityWithOptions(fakes.generateImage, activity.RegisterOptions{Name: ActivityGenerateImage})
	return env
}

func mustAccept(t *testing.T, name string) *testsuite.TestUpdateCallback {
	t.Helper()
	return &testsuite.TestUpdateCallback{
		OnAccept: func() {},
		OnReject: func(err error) { t.Errorf("update %s rejected: %v", name, err) },
		OnComplete: func(_ any, err error) {
			if err != nil {
				t.Errorf("update %s failed: %v", name, err)
			}
		},
	}
}

func queryStatus(t *testing.T, env *testsuite.TestWorkflowEnvironment) StatusView {
	t.Helper()
	val, err := env.QueryWorkflow(QueryGetStatus)
	require.NoError(t, err)
	var view StatusView
	require.NoError(t, val.Get(&view))
	return view
}

func TestInteractiveResearchWorkflow_ClarificationFlow(t *testing.T) {
	fakes := &fakeActivities{questions: []string{"How much caffeine daily?", "Any sleep disorders?"}}
	env := newEnv(t, fakes)

	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", mustAccept(t, "start"),
			&UserQueryInput{Query: " effects of caffeine on sleep "})
	}, 0)

	env.RegisterDelayedCallback(func() {
		view := queryStatus(t, env)
		require.Equal(t, StatusAwaitingClarifications, view.Status)
		require.Equal(t, "effects of caffeine on sleep", view.OriginalQuery)
		require.Equal(t, 0, view.CurrentQuestionIndex)
		require.Equal(t, 2, view.TotalQuestions())
		require.Equal(t, "How much caffeine daily?", view.CurrentQuestion)
		// Reported and re-derived question agree.
		require.Equal(t, view.CurrentQuestion, view.DeriveCurrentQuestion())

		env.UpdateWorkflow(UpdateProvideClarification, "answer-0", mustAccept(t, "answer-0"),
			&SingleClarificationInput{QuestionIndex: 0, Answer: " daily, 200mg "})
	}, time.Millisecond)

	env.RegisterDelayedCallback(func() {
		view := queryStatus(t, env)
		require.Equal(t, StatusAwaitingClarifications, view.Status)
		require.Equal(t, 1, view.CurrentQuestionIndex)
		require.Equal(t, "Any sleep disorders?", view.CurrentQuestion)
		require.Equal(t, map[string]string{"0": "daily, 200mg"}, view.ClarificationResponses)

		env.UpdateWorkflow(UpdateProvideClarification, "answer-1", mustAccept(t, "answer-1"),
			&SingleClarificationInput{QuestionIndex: 1, Answer: "none"})
	}, 2*time.Millisecond)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result Result
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Contains(t, result.MarkdownReport, "effects of caffeine on sleep")
	require.Equal(t, "summary", result.ShortSummary)
	require.Equal(t, []string{"follow up?"}, result.FollowUpQuestions)

	require.NotNil(t, fakes.generatedArtifact)
	require.Equal(t, result.MarkdownReport, fakes.generatedArtifact.MarkdownReport)

	view := queryStatus(t, env)
	require.Equal(t, StatusComplete, view.Status)
	require.Empty(t, view.CurrentQuestion)
}

func TestInteractiveResearchWorkflow_SingleQuestionCompletes(t *testing.T) {
	fakes := &fakeActivities{questions: []string{"only question?"}}
	env := newEnv(t, fakes)

	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", mustAccept(t, "start"),
			&UserQueryInput{Query: "short query"})
	}, 0)
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateProvideClarification, "answer-0", &testsuite.TestUpdateCallback{
			OnAccept: func() {},
			OnReject: func(err error) { t.Errorf("answer rejected: %v", err) },
			OnComplete: func(result any, err error) {
				require.NoError(t, err)
				// Last answer moves the workflow straight to researching.
				require.Equal(t, string(StatusResearching), result)
			},
		}, &SingleClarificationInput{QuestionIndex: 0, Answer: "answer"})
	}, time.Millisecond)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestInteractiveResearchWorkflow_RejectsOutOfRangeIndex(t *testing.T) {
	fakes := &fakeActivities{questions: []string{"only question?"}}
	env := newEnv(t, fakes)

	var rejected error
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", mustAccept(t, "start"),
			&UserQueryInput{Query: "q"})
	}, 0)
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateProvideClarification, "bad-answer", &testsuite.TestUpdateCallback{
			OnAccept:   func() { t.Error("out of range index accepted") },
			OnReject:   func(err error) { rejected = err },
			OnComplete: func(any, error) {},
		}, &SingleClarificationInput{QuestionIndex: 5, Answer: "y"})
	}, time.Millisecond)
	env.RegisterDelayedCallback(func() {
		// The rejected update left the status untouched.
		view := queryStatus(t, env)
		require.Equal(t, StatusAwaitingClarifications, view.Status)
		require.Equal(t, 0, view.CurrentQuestionIndex)
		require.Empty(t, view.ClarificationResponses)

		env.UpdateWorkflow(UpdateProvideClarification, "answer-0", mustAccept(t, "answer-0"),
			&SingleClarificationInput{QuestionIndex: 0, Answer: "y"})
	}, 2*time.Millisecond)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Error(t, rejected)
	require.Contains(t, rejected.Error(), "out of range")
}

func TestInteractiveResearchWorkflow_RejectsAnswerBeforeStart(t *testing.T) {
	fakes := &fakeActivities{questions: []string{"q?"}}
	env := newEnv(t, fakes)

	var rejected error
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateProvideClarification, "early-answer", &testsuite.TestUpdateCallback{
			OnAccept:   func() { t.Error("answer accepted before start") },
			OnReject:   func(err error) { rejected = err },
			OnComplete: func(any, error) {},
		}, &SingleClarificationInput{QuestionIndex: 0, Answer: "y"})
	}, 0)
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", mustAccept(t, "start"),
			&UserQueryInput{Query: "q"})
	}, time.Millisecond)
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateProvideClarification, "answer-0", mustAccept(t, "answer-0"),
			&SingleClarificationInput{QuestionIndex: 0, Answer: "y"})
	}, 2*time.Millisecond)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Error(t, rejected)
}

func TestInteractiveResearchWorkflow_RejectsSecondStart(t *testing.T) {
	fakes := &fakeActivities{questions: nil}
	env := newEnv(t, fakes)

	var rejected error
	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", mustAccept(t, "start"),
			&UserQueryInput{Query: "q"})
		env.UpdateWorkflow(UpdateStartResearch, "start-again", &testsuite.TestUpdateCallback{
			OnAccept:   func() { t.Error("second start accepted") },
			OnReject:   func(err error) { rejected = err },
			OnComplete: func(any, error) {},
		}, &UserQueryInput{Query: "other"})
	}, 0)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Error(t, rejected)
}

func TestInteractiveResearchWorkflow_NoQuestionsSkipsClarifications(t *testing.T) {
	fakes := &fakeActivities{questions: nil}
	env := newEnv(t, fakes)

	env.RegisterDelayedCallback(func() {
		env.UpdateWorkflow(UpdateStartResearch, "start", &testsuite.TestUpdateCallback{
			OnAccept: func() {},
			OnReject: func(err error) { t.Errorf("start rejected: %v", err) },
			OnComplete: func(result any, err error) {
				require.NoError(t, err)
				require.Equal(t, string(StatusResearching), result)
			},
		}, &UserQueryInput{Query: "no ambiguity here"})
	}, 0)

	env.ExecuteWorkflow(WorkflowName, (*WorkflowInput)(nil))

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestInteractiveResearchWorkflow_SeededQuerySkipsUpdates(t *testing.T) {
	fakes := &fakeActivities{}
	env := newEnv(t, fakes)

	query := "seeded query"
	env.ExecuteWorkflow(WorkflowName, &WorkflowInput{InitialQuery: &query, SkipClarifications: true})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	// Skipping clarifications bypasses question generation entirely.
	require.False(t, fakes.questionsCalled)

	var result Result
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Contains(t, result.MarkdownReport, "seeded query")
}

func TestInteractiveResearchWorkflow_ArtifactFailureIsNonFatal(t *testing.T) {
	fakes := &fakeActivities{pdfErr: errors.New("disk full")}
	env := newEnv(t, fakes)

	query := "q"
	env.ExecuteWorkflow(WorkflowName, &WorkflowInput{InitialQuery: &query, SkipClarifications: true})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}
